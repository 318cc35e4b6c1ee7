package gdbindex

// gdbHash is the hash function gdb uses for the .gdb_index symbol table.
// It must match gdb's own implementation bit for bit, otherwise the
// debugger's probes land on the wrong slots.
func gdbHash(name string) uint32 {
	var h uint32
	for i := 0; i < len(name); i++ {
		c := name[i]
		if 'A' <= c && c <= 'Z' {
			c = 'a' + c - 'A'
		}
		h = h*67 + uint32(c) - 113
	}
	return h
}
