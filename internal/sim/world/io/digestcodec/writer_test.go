package digestcodec

import (
	"bytes"
	"crypto/sha256"
	"testing"
)

func TestMapsAreOrderIndependent(t *testing.T) {
	a := map[int]int{}
	b := map[int]int{}
	for i := 0; i < 50; i++ {
		a[i] = i * 3
	}
	for i := 49; i >= 0; i-- {
		b[i] = i * 3
	}
	ha, hb := sha256.New(), sha256.New()
	NewWriter(ha).IntMap(a)
	NewWriter(hb).IntMap(b)
	if !bytes.Equal(ha.Sum(nil), hb.Sum(nil)) {
		t.Fatalf("digest depends on insertion order")
	}
}

func TestLengthPrefixSeparatesLists(t *testing.T) {
	var x, y bytes.Buffer
	wx := NewWriter(&x)
	wx.Ints([]int{1, 2})
	wx.Ints([]int{3})
	wy := NewWriter(&y)
	wy.Ints([]int{1})
	wy.Ints([]int{2, 3})
	if bytes.Equal(x.Bytes(), y.Bytes()) {
		t.Fatalf("different list splits encoded identically")
	}
}
