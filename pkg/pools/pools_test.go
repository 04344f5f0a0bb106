package pools

import (
	"sync"
	"testing"
)

func TestBytePool_Get(t *testing.T) {
	pool := NewBytePool()

	tests := []struct {
		name   string
		size   int
		minCap int
	}{
		{"zero", 0, sizeClasses[0]},
		{"small", 100, sizeClasses[0]},
		{"small_exact", 512, 512},
		{"token", 1500, 2048},
		{"over_limit_token", 3000, 8192},
		{"large", 20000, 32768},
		{"oversized", MaxPooled + 1, MaxPooled + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := pool.Get(tt.size)
			if len(b) != 0 {
				t.Errorf("Get(%d) length = %d, want 0", tt.size, len(b))
			}
			if cap(b) < tt.minCap {
				t.Errorf("Get(%d) capacity = %d, want >= %d", tt.size, cap(b), tt.minCap)
			}
		})
	}
}

func TestClassFor(t *testing.T) {
	tests := []struct {
		size int
		want int
	}{
		{1, 0},
		{512, 0},
		{513, 1},
		{8192, 2},
		{32768, 3},
		{32769, -1},
	}
	for _, tt := range tests {
		if got := classFor(tt.size); got != tt.want {
			t.Errorf("classFor(%d) = %d, want %d", tt.size, got, tt.want)
		}
	}
}

func TestBytePool_GetSized(t *testing.T) {
	pool := NewBytePool()

	b := pool.GetSized(1000)
	if len(b) != 1000 {
		t.Errorf("GetSized(1000) length = %d, want 1000", len(b))
	}
}

func TestBytePool_PutAndReuse(t *testing.T) {
	pool := NewBytePool()

	for i := 0; i < 10; i++ {
		b := pool.Get(2048)
		b = append(b, "compressed token bytes"...)
		pool.Put(b)
	}

	b := pool.Get(2048)
	if len(b) != 0 {
		t.Errorf("After Put, Get returned slice with length %d, want 0", len(b))
	}
	if cap(b) < 2048 {
		t.Errorf("After Put, Get returned capacity %d, want >= 2048", cap(b))
	}
}

func TestBytePool_PutOddSizes(t *testing.T) {
	pool := NewBytePool()

	// Neither should panic; the first is too small for any class, the
	// second too large to keep.
	pool.Put(make([]byte, 10))
	pool.Put(make([]byte, MaxPooled+1000))

	// A 3000-byte slice is filed as a 2048 buffer and must never be handed
	// out for a larger request.
	pool.Put(make([]byte, 0, 3000))
	if b := pool.Get(4000); cap(b) < 4000 {
		t.Errorf("Get(4000) capacity = %d, want >= 4000", cap(b))
	}
}

func TestDefaultBytePool(t *testing.T) {
	b := GetBytes(100)
	if cap(b) < 100 {
		t.Errorf("GetBytes(100) capacity = %d, want >= 100", cap(b))
	}
	PutBytes(b)

	b2 := GetBytesSized(50)
	if len(b2) != 50 {
		t.Errorf("GetBytesSized(50) length = %d, want 50", len(b2))
	}
	PutBytes(b2)
}

func TestBytePool_Concurrent(t *testing.T) {
	pool := NewBytePool()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				b := pool.Get(512)
				b = append(b, "concurrent test data"...)
				pool.Put(b)
			}
		}()
	}

	wg.Wait()
}

func BenchmarkBytePool_Get(b *testing.B) {
	pool := NewBytePool()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		buf := pool.Get(2048)
		pool.Put(buf)
	}
}

func BenchmarkBytePool_GetWithoutPool(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = make([]byte, 0, 2048)
	}
}
