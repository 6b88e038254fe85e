package reedsolomon

// poly is an immutable polynomial over a Field. coef runs from the highest
// degree term down to the constant and has no leading zeros unless it is
// the zero polynomial.
type poly struct {
	field *Field
	coef  []int
}

func newPoly(field *Field, coef []int) *poly {
	i := 0
	for i < len(coef)-1 && coef[i] == 0 {
		i++
	}
	return &poly{field: field, coef: coef[i:]}
}

func (p *poly) degree() int { return len(p.coef) - 1 }

func (p *poly) isZero() bool { return p.coef[0] == 0 }

// at returns the coefficient of x^degree.
func (p *poly) at(degree int) int { return p.coef[len(p.coef)-1-degree] }

func (p *poly) eval(a int) int {
	if a == 0 {
		return p.at(0)
	}
	result := 0
	for _, c := range p.coef {
		result = p.field.Multiply(a, result) ^ c
	}
	return result
}

func (p *poly) add(q *poly) *poly {
	if p.isZero() {
		return q
	}
	if q.isZero() {
		return p
	}
	small, large := p.coef, q.coef
	if len(small) > len(large) {
		small, large = large, small
	}
	sum := make([]int, len(large))
	diff := len(large) - len(small)
	copy(sum, large[:diff])
	for i := diff; i < len(large); i++ {
		sum[i] = small[i-diff] ^ large[i]
	}
	return newPoly(p.field, sum)
}

func (p *poly) mul(q *poly) *poly {
	if p.isZero() || q.isZero() {
		return p.field.zero
	}
	product := make([]int, len(p.coef)+len(q.coef)-1)
	for i, a := range p.coef {
		for j, b := range q.coef {
			product[i+j] ^= p.field.Multiply(a, b)
		}
	}
	return newPoly(p.field, product)
}

func (p *poly) scale(s int) *poly {
	switch s {
	case 0:
		return p.field.zero
	case 1:
		return p
	}
	product := make([]int, len(p.coef))
	for i, c := range p.coef {
		product[i] = p.field.Multiply(c, s)
	}
	return newPoly(p.field, product)
}

// shift multiplies by coefficient * x^degree.
func (p *poly) shift(degree, coefficient int) *poly {
	if coefficient == 0 {
		return p.field.zero
	}
	product := make([]int, len(p.coef)+degree)
	for i, c := range p.coef {
		product[i] = p.field.Multiply(c, coefficient)
	}
	return newPoly(p.field, product)
}
