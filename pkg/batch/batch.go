// Package batch splits item identifier lists into API-sized groups.
//
// The goonmetrics price endpoint rejects requests carrying more than a
// fixed number of type ids, so large catalogs have to be fetched in
// several requests. Split produces the groups; the fetcher runs them in
// parallel.
package batch

// Split divides ids into contiguous groups of at most limit elements.
// Order is preserved and concatenating the groups reproduces ids
// exactly. Only the last group may be shorter than limit. An empty
// input produces no groups.
func Split(ids []int32, limit int) [][]int32 {
	if len(ids) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = 1
	}

	batches := make([][]int32, 0, (len(ids)+limit-1)/limit)
	for start := 0; start < len(ids); start += limit {
		end := start + limit
		if end > len(ids) {
			end = len(ids)
		}
		batches = append(batches, ids[start:end])
	}
	return batches
}
