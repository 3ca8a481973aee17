package domain

// MaxPageLimit is both the default and the upper bound of a page size.
const MaxPageLimit = 50

// Page is a normalized page request over an insertion-ordered log.
type Page struct {
	Number uint64
	Limit  uint64
}

// NewPage applies the paging defaults: a page below 1 means the first page, a
// limit below 1 means MaxPageLimit, and larger limits are clamped to it.
func NewPage(page, limit int64) Page {
	p := Page{Number: 1, Limit: MaxPageLimit}
	if page > 0 {
		p.Number = uint64(page)
	}
	if limit > 0 && limit < MaxPageLimit {
		p.Limit = uint64(limit)
	}
	return p
}

// Window returns the offset of the page and whether that offset is reachable
// within total records. Huge page numbers never overflow.
func (p Page) Window(total uint64) (offset uint64, ok bool) {
	skipPages := p.Number - 1
	if skipPages > total/p.Limit {
		return 0, false
	}
	offset = skipPages * p.Limit
	if offset >= total {
		return 0, false
	}
	return offset, true
}
