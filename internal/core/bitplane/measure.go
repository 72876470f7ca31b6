package bitplane

// BitStat pairs one universe bit with the statistics of its layer.
type BitStat struct {
	Bit uint64
	ComponentStat
}

// Measure runs the full decomposition for one image: distinct values, bit
// universe, layer stack, then one label pass per layer in universe order.
func Measure(img Image) []BitStat {
	u := NewUniverse(img.Distinct())
	stack := Synthesize(img, u)
	out := make([]BitStat, stack.Len())
	for i := range out {
		out[i] = BitStat{Bit: u.At(i), ComponentStat: Label(stack.Layer(i))}
	}
	return out
}
