package climate

// accumulator keeps an element-wise running sum of hourly series.
// The mean does not depend on the order series were added.
type accumulator struct {
	sum       HourlySeries
	count     int
	attempted int
}

func (a *accumulator) add(s HourlySeries) {
	for i, v := range s {
		a.sum[i] += v
	}
	a.count++
}

// addDeviation adds s - ref.
func (a *accumulator) addDeviation(s, ref HourlySeries) {
	for i, v := range s {
		a.sum[i] += v - ref[i]
	}
	a.count++
}

// profile returns the element-wise mean, or zeros when nothing was added.
func (a *accumulator) profile() Profile {
	p := Profile{Years: a.count, Attempted: a.attempted}
	if a.count == 0 {
		return p
	}
	n := float64(a.count)
	for i, v := range a.sum {
		p.Series[i] = v / n
	}
	return p
}

// Combine adds two series element-wise.
func Combine(a, b HourlySeries) HourlySeries {
	var out HourlySeries
	for i := range out {
		out[i] = a[i] + b[i]
	}
	return out
}
