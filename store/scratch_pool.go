package store

// scratchPool is a fixed-size buffer pool sized at
// sizeof(EntryHeader)+max_key_length+max_value_length, the on-stack buffer
// Design Notes §9 calls out for staging an entry's bytes during GC's copy.
// Adapted from the teacher's arena-backed, channel-based free list
// (manager/cache.FixedSizeBufferPool) so GC doesn't allocate per entry.
type scratchPool struct {
	buffers [][]byte
	free    chan uint16

	arena   []byte
	bufSize int
}

func newScratchPool(n, bufSize int) *scratchPool {
	arena := make([]byte, n*bufSize)

	buffers := make([][]byte, n)
	for i := 0; i < n; i++ {
		start := i * bufSize
		end := start + bufSize
		buffers[i] = arena[start:end:end]
	}

	free := make(chan uint16, n)
	for i := 0; i < n; i++ {
		free <- uint16(i)
	}

	return &scratchPool{arena: arena, buffers: buffers, free: free, bufSize: bufSize}
}

func (p *scratchPool) get() ([]byte, uint16) {
	id := <-p.free
	return p.buffers[id], id
}

func (p *scratchPool) put(id uint16) {
	p.free <- id
}
