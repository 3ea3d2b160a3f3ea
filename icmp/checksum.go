package icmp

// Checksum computes the RFC 1071 Internet checksum of b. Byte pairs are
// summed little-endian and the complemented result is swapped back, so the
// returned value is meant to be written big-endian into the header.
func Checksum(b []byte) uint16 {
	var sum uint32
	n := len(b) &^ 1
	for i := 0; i < n; i += 2 {
		sum += uint32(b[i]) | uint32(b[i+1])<<8
	}
	if len(b)%2 == 1 {
		sum += uint32(b[len(b)-1])
	}
	for sum > 0xffff {
		sum = (sum >> 16) + (sum & 0xffff)
	}
	c := ^uint16(sum)
	return c>>8 | c<<8
}

// Valid reports whether b, with its checksum already embedded, sums to the
// all-ones accumulator.
func Valid(b []byte) bool {
	return Checksum(b) == 0
}
