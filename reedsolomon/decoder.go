package reedsolomon

import "errors"

// ErrUncorrectable reports a block with more errors than its EC codewords
// can repair.
var ErrUncorrectable = errors.New("reedsolomon: too many errors")

// Decoder repairs codeword blocks over one Field.
type Decoder struct {
	field *Field
}

// NewDecoder creates a Decoder for field.
func NewDecoder(field *Field) *Decoder {
	return &Decoder{field: field}
}

// Decode corrects received in place, treating its last numEC entries as
// error correction codewords, and returns how many entries it changed.
func (d *Decoder) Decode(received []int, numEC int) (int, error) {
	f := d.field
	p := newPoly(f, received)
	syndromes := make([]int, numEC)
	clean := true
	for i := range numEC {
		s := p.eval(f.Exp(i + f.base))
		syndromes[numEC-1-i] = s
		if s != 0 {
			clean = false
		}
	}
	if clean {
		return 0, nil
	}

	sigma, omega, err := d.euclid(f.monomial(numEC, 1), newPoly(f, syndromes), numEC)
	if err != nil {
		return 0, err
	}
	locations, err := d.errorLocations(sigma)
	if err != nil {
		return 0, err
	}
	magnitudes := d.errorMagnitudes(omega, locations)
	for i, loc := range locations {
		pos := len(received) - 1 - f.Log(loc)
		if pos < 0 {
			return 0, ErrUncorrectable
		}
		received[pos] ^= magnitudes[i]
	}
	return len(locations), nil
}

// euclid runs the extended Euclidean algorithm until the remainder degree
// drops below numEC/2 and returns the normalized error locator and
// evaluator polynomials.
func (d *Decoder) euclid(a, b *poly, numEC int) (sigma, omega *poly, err error) {
	f := d.field
	if a.degree() < b.degree() {
		a, b = b, a
	}
	rLast, r := a, b
	tLast, t := f.zero, f.one

	for 2*r.degree() >= numEC {
		rLastLast, tLastLast := rLast, tLast
		rLast, tLast = r, t
		if rLast.isZero() {
			return nil, nil, ErrUncorrectable
		}
		r = rLastLast
		q := f.zero
		lead := f.Inverse(rLast.at(rLast.degree()))
		for r.degree() >= rLast.degree() && !r.isZero() {
			diff := r.degree() - rLast.degree()
			s := f.Multiply(r.at(r.degree()), lead)
			q = q.add(f.monomial(diff, s))
			r = r.add(rLast.shift(diff, s))
		}
		t = q.mul(tLast).add(tLastLast)
		if r.degree() >= rLast.degree() {
			return nil, nil, ErrUncorrectable
		}
	}

	t0 := t.at(0)
	if t0 == 0 {
		return nil, nil, ErrUncorrectable
	}
	inv := f.Inverse(t0)
	return t.scale(inv), r.scale(inv), nil
}

// errorLocations finds the roots of the locator by exhaustive search.
func (d *Decoder) errorLocations(locator *poly) ([]int, error) {
	n := locator.degree()
	if n == 1 {
		return []int{locator.at(1)}, nil
	}
	found := make([]int, 0, n)
	for i := 1; i < d.field.size && len(found) < n; i++ {
		if locator.eval(i) == 0 {
			found = append(found, d.field.Inverse(i))
		}
	}
	if len(found) != n {
		return nil, ErrUncorrectable
	}
	return found, nil
}

// errorMagnitudes applies Forney's formula.
func (d *Decoder) errorMagnitudes(evaluator *poly, locations []int) []int {
	f := d.field
	out := make([]int, len(locations))
	for i, loc := range locations {
		xiInv := f.Inverse(loc)
		denom := 1
		for j, other := range locations {
			if i == j {
				continue
			}
			// 1 + X_j/X_i, with addition being xor.
			denom = f.Multiply(denom, 1^f.Multiply(other, xiInv))
		}
		out[i] = f.Multiply(evaluator.eval(xiInv), f.Inverse(denom))
		if f.base != 0 {
			out[i] = f.Multiply(out[i], xiInv)
		}
	}
	return out
}
