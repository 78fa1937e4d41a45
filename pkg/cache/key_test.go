package cache

import (
	"strings"
	"testing"
)

func TestQuoteKey_String(t *testing.T) {
	key := QuoteKey{StationID: "60003760", ItemIDs: []int32{34, 35, 36}}

	s := key.String()
	if !strings.HasPrefix(s, "goonmetrics:quotes:60003760:3:") {
		t.Errorf("key = %q, want goonmetrics:quotes:60003760:3: prefix", s)
	}
}

func TestQuoteKey_Deterministic(t *testing.T) {
	a := QuoteKey{StationID: "60003760", ItemIDs: []int32{34, 35, 36}}
	b := QuoteKey{StationID: "60003760", ItemIDs: []int32{34, 35, 36}}

	if a.String() != b.String() {
		t.Errorf("equal keys produced %q and %q", a.String(), b.String())
	}
}

func TestQuoteKey_Distinguishes(t *testing.T) {
	base := QuoteKey{StationID: "60003760", ItemIDs: []int32{34, 35, 36}}

	variants := []QuoteKey{
		{StationID: "1030049082711", ItemIDs: []int32{34, 35, 36}}, // other station
		{StationID: "60003760", ItemIDs: []int32{34, 35}},          // shorter list
		{StationID: "60003760", ItemIDs: []int32{36, 35, 34}},      // other order
		{StationID: "60003760", ItemIDs: []int32{34, 35, 37}},      // other ids
	}

	for i, v := range variants {
		if v.String() == base.String() {
			t.Errorf("variant %d collides with base key %q", i, base.String())
		}
	}
}
