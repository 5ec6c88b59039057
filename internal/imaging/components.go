package imaging

import "image"

// ExternalComponents finds 8-connected foreground components and returns the
// bounding boxes of those that are not enclosed by another component.
//
// A component is external when it touches the image border or is adjacent
// to background that is 4-connected to the border. Components sitting inside
// a hole of a larger stroke (the counter of an "o", a dot inside a loop) are
// skipped.
//
// Boxes are returned in scan order of each component's first pixel (row-major).
func ExternalComponents(m *Mask) []image.Rectangle {
	w, h := m.Width, m.Height
	if w == 0 || h == 0 {
		return nil
	}

	outside := outerBackground(m)
	visited := make([]bool, w*h)
	boxes := make([]image.Rectangle, 0)
	stack := make([]int, 0, 64)

	for start := range m.Pix {
		if !m.Pix[start] || visited[start] {
			continue
		}

		minX, minY := w, h
		maxX, maxY := -1, -1
		external := false

		visited[start] = true
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := idx%w, idx/w

			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}

			if !external {
				if x == 0 || y == 0 || x == w-1 || y == h-1 ||
					outside[idx-1] || outside[idx+1] || outside[idx-w] || outside[idx+w] {
					external = true
				}
			}

			// 8-connected neighbors
			for dy := -1; dy <= 1; dy++ {
				ny := y + dy
				if ny < 0 || ny >= h {
					continue
				}
				for dx := -1; dx <= 1; dx++ {
					nx := x + dx
					if (dx == 0 && dy == 0) || nx < 0 || nx >= w {
						continue
					}
					n := ny*w + nx
					if m.Pix[n] && !visited[n] {
						visited[n] = true
						stack = append(stack, n)
					}
				}
			}
		}

		if external {
			boxes = append(boxes, image.Rect(minX, minY, maxX+1, maxY+1))
		}
	}

	return boxes
}

// outerBackground marks background pixels 4-connected to the image border.
func outerBackground(m *Mask) []bool {
	w, h := m.Width, m.Height
	outside := make([]bool, w*h)
	stack := make([]int, 0, 2*(w+h))

	seed := func(idx int) {
		if !m.Pix[idx] && !outside[idx] {
			outside[idx] = true
			stack = append(stack, idx)
		}
	}
	for x := 0; x < w; x++ {
		seed(x)
		seed((h-1)*w + x)
	}
	for y := 0; y < h; y++ {
		seed(y * w)
		seed(y*w + w - 1)
	}

	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := idx%w, idx/w
		if x > 0 {
			seed(idx - 1)
		}
		if x < w-1 {
			seed(idx + 1)
		}
		if y > 0 {
			seed(idx - w)
		}
		if y < h-1 {
			seed(idx + w)
		}
	}
	return outside
}
