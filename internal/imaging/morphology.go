package imaging

// Rectangular binary morphology.
//
// A kernel of width kw is anchored at kw/2, so an output pixel at x looks at
// input pixels x-kw/2 .. x+(kw-1-kw/2); the same holds vertically. Pixels
// outside the mask never contribute: they count as background for dilation
// and as foreground for erosion.

// Dilate grows foreground by a kw×kh rectangle, repeated iterations times.
func Dilate(m *Mask, kw, kh, iterations int) *Mask {
	out := m
	for i := 0; i < iterations; i++ {
		out = morph(out, kw, kh, false)
	}
	if out == m {
		out = cloneMask(m)
	}
	return out
}

// Erode shrinks foreground by a kw×kh rectangle, repeated iterations times.
func Erode(m *Mask, kw, kh, iterations int) *Mask {
	out := m
	for i := 0; i < iterations; i++ {
		out = morph(out, kw, kh, true)
	}
	if out == m {
		out = cloneMask(m)
	}
	return out
}

// Close bridges gaps narrower than the kernel: a dilation followed by an
// erosion with the same rectangle.
func Close(m *Mask, kw, kh int) *Mask {
	return Erode(Dilate(m, kw, kh, 1), kw, kh, 1)
}

func cloneMask(m *Mask) *Mask {
	c := NewMask(m.Width, m.Height)
	copy(c.Pix, m.Pix)
	return c
}

// morph runs the separable rectangle filter: rows first, then columns.
func morph(m *Mask, kw, kh int, erode bool) *Mask {
	if kw < 1 {
		kw = 1
	}
	if kh < 1 {
		kh = 1
	}
	w, h := m.Width, m.Height
	tmp := NewMask(w, h)
	out := NewMask(w, h)

	n := w
	if h > n {
		n = h
	}
	prefix := make([]int, n+1)

	ax := kw / 2
	for y := 0; y < h; y++ {
		windowPass(m.Pix, tmp.Pix, y*w, 1, w, ax, kw-1-ax, erode, prefix)
	}
	ay := kh / 2
	for x := 0; x < w; x++ {
		windowPass(tmp.Pix, out.Pix, x, w, h, ay, kh-1-ay, erode, prefix)
	}
	return out
}

// windowPass applies a 1-D max (dilate) or min (erode) filter to the n samples
// at base, base+stride, ... using a running count of foreground samples.
func windowPass(src, dst []bool, base, stride, n, before, after int, erode bool, prefix []int) {
	prefix[0] = 0
	for i := 0; i < n; i++ {
		prefix[i+1] = prefix[i]
		if src[base+i*stride] {
			prefix[i+1]++
		}
	}
	for i := 0; i < n; i++ {
		lo := i - before
		if lo < 0 {
			lo = 0
		}
		hi := i + after
		if hi > n-1 {
			hi = n - 1
		}
		count := prefix[hi+1] - prefix[lo]
		if erode {
			dst[base+i*stride] = count == hi-lo+1
		} else {
			dst[base+i*stride] = count > 0
		}
	}
}
