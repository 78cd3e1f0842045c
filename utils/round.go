package utils

// RoundToTenth returns n/d rounded to one decimal place, halves away from zero.
// Working on the integer ratio keeps 0.15 from becoming 0.1 the way
// math.Round(x*10)/10 can.
func RoundToTenth(n, d int64) float64 {
	if d == 0 {
		return 0
	}
	if d < 0 {
		n, d = -n, -d
	}
	negative := n < 0
	if negative {
		n = -n
	}

	q, r := n/d, n%d
	tenths := q*10 + (r*10)/d
	if ((r*10)%d)*2 >= d {
		tenths++
	}

	if negative {
		tenths = -tenths
	}
	return float64(tenths) / 10
}
