package handler

func toListMeta(total int64, page, size, pages int) listMeta {
	return listMeta{Total: total, Page: page, Size: size, Pages: pages}
}
