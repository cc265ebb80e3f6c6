package model

import "log"

// Code maps between linear hypothesis indices and the alleles that make
// up a hypothesis.
type Code interface {
	// Size is the number of hypotheses.
	Size() int
	// A returns the first allele of hypothesis k.
	A(k int) int
	// B returns the second allele of hypothesis k. For haploid codes
	// this is the same as A.
	B(k int) int
	// Code returns the hypothesis for the unordered allele pair (a, b).
	Code(a, b int) int
	Homozygous(k int) bool
}

// HaploidCode is the identity code: one allele per hypothesis.
type HaploidCode int

// Size implements the Code interface.
func (c HaploidCode) Size() int { return int(c) }

// A implements the Code interface.
func (c HaploidCode) A(k int) int { return k }

// B implements the Code interface.
func (c HaploidCode) B(k int) int { return k }

// Code implements the Code interface.
func (c HaploidCode) Code(a, b int) int {
	if a != b {
		log.Panicf("haploid code for distinct alleles %v and %v", a, b)
	}
	return a
}

// Homozygous implements the Code interface.
func (c HaploidCode) Homozygous(_ int) bool { return true }

// DiploidCode enumerates unordered allele pairs in VCF genotype order:
// the pair (a, b) with a <= b has index b*(b+1)/2 + a.
type DiploidCode struct {
	alleles int
	a, b    []int
}

// NewDiploidCode creates the code for the given number of alleles.
func NewDiploidCode(alleles int) *DiploidCode {
	size := alleles * (alleles + 1) / 2
	c := &DiploidCode{
		alleles: alleles,
		a:       make([]int, size),
		b:       make([]int, size),
	}
	k := 0
	for b := 0; b < alleles; b++ {
		for a := 0; a <= b; a, k = a+1, k+1 {
			c.a[k] = a
			c.b[k] = b
		}
	}
	return c
}

// Alleles is the number of alleles the code is defined for.
func (c *DiploidCode) Alleles() int { return c.alleles }

// Size implements the Code interface.
func (c *DiploidCode) Size() int { return len(c.a) }

// A implements the Code interface.
func (c *DiploidCode) A(k int) int { return c.a[k] }

// B implements the Code interface.
func (c *DiploidCode) B(k int) int { return c.b[k] }

// Code implements the Code interface.
func (c *DiploidCode) Code(a, b int) int {
	if a > b {
		a, b = b, a
	}
	if a < 0 || b >= c.alleles {
		log.Panicf("alleles (%v, %v) out of range for %v alleles", a, b, c.alleles)
	}
	return b*(b+1)/2 + a
}

// Homozygous implements the Code interface.
func (c *DiploidCode) Homozygous(k int) bool { return c.a[k] == c.b[k] }
