package rel

// Integer vector helpers shared by the relation layer. All constraint rows
// are stored as []int64 with the constant term in column 0.

// Optimized and does not have problems with integer overflow.
func absInt(n int64) int64 {
	y := n >> 63
	return (n ^ y) - y
}

// Division rounding towards negative infinity.
func divFloor(n int64, m int64) int64 {
	q := n / m
	r := n % m
	if (r > 0 && m < 0) || (r < 0 && m > 0) {
		return q - 1
	}
	return q
}

// Remainder with the sign of the divisor.
func modulo(n int64, m int64) int64 {
	r := n % m
	if (r > 0 && m < 0) || (r < 0 && m > 0) {
		return r + m
	}
	return r
}

func gcd(a, b int64) int64 {
	a, b = absInt(a), absInt(b)
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// Negate all the integers in a row.
func negate(ns []int64) []int64 {
	nr := make([]int64, len(ns))
	for i, n := range ns {
		nr[i] = -n
	}
	return nr
}

func negateIn(ns []int64) {
	for i := range ns {
		ns[i] = -ns[i]
	}
}

// Add n times ys to xs, element-wise, into a fresh row.
func addMul(n int64, xs []int64, ys []int64) []int64 {
	resLen := len(xs)
	if len(ys) > resLen {
		resLen = len(ys)
	}
	nr := make([]int64, resLen)
	for i := 0; i < resLen; i++ {
		switch {
		case i >= len(ys):
			nr[i] = xs[i]
		case i >= len(xs):
			nr[i] = n * ys[i]
		default:
			nr[i] = xs[i] + n*ys[i]
		}
	}
	return nr
}

// True if the first n entries of both rows are identical.
func seqEq(xs, ys []int64, n int) bool {
	for i := 0; i < n; i++ {
		if xs[i] != ys[i] {
			return false
		}
	}
	return true
}

func allZero(ns []int64) bool {
	for _, n := range ns {
		if n != 0 {
			return false
		}
	}
	return true
}

// Divide a row by the gcd of its entries. The zero row is left alone.
func reduceRow(ns []int64) []int64 {
	var g int64
	for _, n := range ns {
		g = gcd(g, n)
	}
	if g <= 1 {
		return ns
	}
	nr := make([]int64, len(ns))
	for i, n := range ns {
		nr[i] = n / g
	}
	return nr
}

func cloneRow(ns []int64) []int64 {
	nr := make([]int64, len(ns))
	copy(nr, ns)
	return nr
}

func cloneRows(rs [][]int64) [][]int64 {
	nr := make([][]int64, len(rs))
	for i, r := range rs {
		nr[i] = cloneRow(r)
	}
	return nr
}

// Insert zero columns into a row at position at.
func insertCols(row []int64, at, n int) []int64 {
	nr := make([]int64, len(row)+n)
	copy(nr, row[:at])
	copy(nr[at+n:], row[at:])
	return nr
}

// Dot product of a row with a point laid out in the same column order,
// where point[0] is implicitly 1 (the constant column).
func evalRow(row []int64, point []int64) int64 {
	v := row[0]
	for i, p := range point {
		v += row[1+i] * p
	}
	return v
}
