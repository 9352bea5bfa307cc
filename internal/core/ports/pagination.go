package ports

// PageResult is one page of a filtered, sorted listing.
type PageResult[T any] struct {
	Items []T
	Total int64
	Page  int
	Size  int
	Pages int
}
