// Package reedsolomon corrects errors in codeword blocks over GF(2^n).
package reedsolomon

import "fmt"

// Field is GF(size) generated by a primitive polynomial. Elements are ints
// in [0, size).
type Field struct {
	exp       []int
	log       []int
	size      int
	primitive int
	// base is b in the generator (x - a^b)(x - a^(b+1))...
	base int
	zero *poly
	one  *poly
}

// QRCodeField256 is x^8 + x^4 + x^3 + x^2 + 1 with generator base 0.
var QRCodeField256 = NewField(0x011D, 256, 0)

// NewField builds the exponent and logarithm tables for GF(size).
func NewField(primitive, size, base int) *Field {
	f := &Field{
		exp:       make([]int, size),
		log:       make([]int, size),
		size:      size,
		primitive: primitive,
		base:      base,
	}
	x := 1
	for i := range f.exp {
		f.exp[i] = x
		x <<= 1
		if x >= size {
			x = (x ^ primitive) & (size - 1)
		}
	}
	for i := 0; i < size-1; i++ {
		f.log[f.exp[i]] = i
	}
	f.zero = &poly{field: f, coef: []int{0}}
	f.one = &poly{field: f, coef: []int{1}}
	return f
}

// Size returns the number of field elements.
func (f *Field) Size() int { return f.size }

// Exp returns alpha^a.
func (f *Field) Exp(a int) int { return f.exp[a] }

// Log returns the discrete logarithm of a, which must be non-zero.
func (f *Field) Log(a int) int {
	if a == 0 {
		panic("reedsolomon: log of zero")
	}
	return f.log[a]
}

// Inverse returns the multiplicative inverse of a, which must be non-zero.
func (f *Field) Inverse(a int) int {
	if a == 0 {
		panic("reedsolomon: inverse of zero")
	}
	return f.exp[f.size-1-f.log[a]]
}

// Multiply returns a*b.
func (f *Field) Multiply(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	return f.exp[(f.log[a]+f.log[b])%(f.size-1)]
}

func (f *Field) monomial(degree, coefficient int) *poly {
	if coefficient == 0 {
		return f.zero
	}
	coef := make([]int, degree+1)
	coef[0] = coefficient
	return &poly{field: f, coef: coef}
}

func (f *Field) String() string {
	return fmt.Sprintf("GF(0x%x,%d)", f.primitive, f.size)
}
