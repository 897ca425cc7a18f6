package compress

// Shuffle byte-transposes src into dst for elements of typeSize bytes.
//
// With N = len(src)/typeSize whole elements, output byte i*N+j is input byte
// j*typeSize+i: byte 0 of every element first, then byte 1, and so on. Trailing bytes
// that do not form a whole element are copied unchanged. dst must be at least len(src)
// bytes and must not overlap src.
func Shuffle(typeSize int, src, dst []byte) {
	n := 0
	if typeSize > 0 {
		n = len(src) / typeSize
	}
	if typeSize <= 1 || n <= 1 {
		copy(dst, src)
		return
	}

	switch typeSize {
	case 4:
		shuffle4(src, dst, n)
	case 8:
		shuffle8(src, dst, n)
	default:
		for i := 0; i < typeSize; i++ {
			out := dst[i*n : (i+1)*n]
			for j := range out {
				out[j] = src[j*typeSize+i]
			}
		}
	}

	tail := n * typeSize
	copy(dst[tail:len(src)], src[tail:])
}

// Unshuffle reverses Shuffle.
func Unshuffle(typeSize int, src, dst []byte) {
	n := 0
	if typeSize > 0 {
		n = len(src) / typeSize
	}
	if typeSize <= 1 || n <= 1 {
		copy(dst, src)
		return
	}

	switch typeSize {
	case 4:
		unshuffle4(src, dst, n)
	case 8:
		unshuffle8(src, dst, n)
	default:
		for i := 0; i < typeSize; i++ {
			in := src[i*n : (i+1)*n]
			for j, b := range in {
				dst[j*typeSize+i] = b
			}
		}
	}

	tail := n * typeSize
	copy(dst[tail:len(src)], src[tail:])
}

func shuffle4(src, dst []byte, n int) {
	d0, d1, d2, d3 := dst[0:n], dst[n:2*n], dst[2*n:3*n], dst[3*n:4*n]
	for j := 0; j < n; j++ {
		e := src[j*4 : j*4+4 : j*4+4]
		d0[j], d1[j], d2[j], d3[j] = e[0], e[1], e[2], e[3]
	}
}

func unshuffle4(src, dst []byte, n int) {
	s0, s1, s2, s3 := src[0:n], src[n:2*n], src[2*n:3*n], src[3*n:4*n]
	for j := 0; j < n; j++ {
		e := dst[j*4 : j*4+4 : j*4+4]
		e[0], e[1], e[2], e[3] = s0[j], s1[j], s2[j], s3[j]
	}
}

func shuffle8(src, dst []byte, n int) {
	for j := 0; j < n; j++ {
		e := src[j*8 : j*8+8 : j*8+8]
		for i, b := range e {
			dst[i*n+j] = b
		}
	}
}

func unshuffle8(src, dst []byte, n int) {
	for j := 0; j < n; j++ {
		e := dst[j*8 : j*8+8 : j*8+8]
		for i := range e {
			e[i] = src[i*n+j]
		}
	}
}
