// Package cache provides a generic LRU cache bounded by the summed cost of
// its entries, such as the byte size of decoded bitmap resources.
//
//	c := cache.New[string, []byte](64<<10, nil)
//	c.Set("logo", pix, int64(len(pix)))
//	pix, ok := c.Get("logo")
//
// When an insertion pushes the total cost over the limit, least recently
// used entries are evicted until it fits again. The entry just inserted is
// never evicted by its own insertion, so a single entry larger than the
// limit is kept until the next one arrives.
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
