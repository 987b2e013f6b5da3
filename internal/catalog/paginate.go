package catalog

import "fmt"

// =============================================================================
// PAGINATION ENGINE
// =============================================================================

// PageRequest carries the client's pagination parameters.
type PageRequest struct {
	Page           int
	PageSize       int
	SkipPagination bool
}

// Normalize applies defaults and clamps: page >= 1, pageSize in [1, MaxPageSize].
func (r PageRequest) Normalize() PageRequest {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.PageSize < 1 {
		r.PageSize = DefaultPageSize
	}
	if r.PageSize > MaxPageSize {
		r.PageSize = MaxPageSize
	}
	return r
}

// Pagination describes the slice a page response covers.
type Pagination struct {
	Page            int  `json:"page"`
	PageSize        int  `json:"pageSize"`
	TotalPages      int  `json:"totalPages"`
	StartIndex      int  `json:"startIndex"`
	EndIndex        int  `json:"endIndex"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

// PageMeta is the response metadata accompanying a page of records.
// Pagination is nil when skipPagination was requested.
type PageMeta struct {
	TotalRecords    int         `json:"totalRecords"`
	ReturnedRecords int         `json:"returnedRecords"`
	Truncated       bool        `json:"truncated"`
	DownloadURL     *string     `json:"downloadUrl"`
	Pagination      *Pagination `json:"pagination,omitempty"`
}

// Page is the paginated view of a catalog.
type Page struct {
	Records []UnifiedDataRecord
	Meta    PageMeta
}

// Paginate slices the catalog's materialized records for the requested page.
// TotalRecords drives the page arithmetic even when fewer records are
// materialized; the returned slice never exceeds pageSize.
func Paginate(cat *UnifiedDataCatalog, req PageRequest) (*Page, error) {
	req = req.Normalize()

	var downloadURL *string
	if cat.TotalRecords > DownloadHintThreshold {
		u := fmt.Sprintf("/data-sources/%s/download", cat.SourceID)
		downloadURL = &u
	}

	if req.SkipPagination {
		return &Page{
			Records: cat.Records,
			Meta: PageMeta{
				TotalRecords:    cat.TotalRecords,
				ReturnedRecords: len(cat.Records),
				Truncated:       false,
				DownloadURL:     downloadURL,
			},
		}, nil
	}

	startIndex := (req.Page - 1) * req.PageSize
	endIndex := startIndex + req.PageSize

	sliceStart := startIndex
	if sliceStart > len(cat.Records) {
		sliceStart = len(cat.Records)
	}
	sliceEnd := endIndex
	if sliceEnd > len(cat.Records) {
		sliceEnd = len(cat.Records)
	}
	records := cat.Records[sliceStart:sliceEnd]

	// Upstream inconsistency between Records and TotalRecords (e.g. an
	// under-capped re-transform) must not leak an oversized page.
	if len(records) > req.PageSize {
		return nil, fmt.Errorf("page slice of %d records exceeds page size %d for catalog %s",
			len(records), req.PageSize, cat.CatalogID)
	}

	totalPages := (cat.TotalRecords + req.PageSize - 1) / req.PageSize
	reportedEnd := endIndex
	if reportedEnd > cat.TotalRecords {
		reportedEnd = cat.TotalRecords
	}

	return &Page{
		Records: records,
		Meta: PageMeta{
			TotalRecords:    cat.TotalRecords,
			ReturnedRecords: len(records),
			Truncated:       cat.TotalRecords > req.PageSize,
			DownloadURL:     downloadURL,
			Pagination: &Pagination{
				Page:            req.Page,
				PageSize:        req.PageSize,
				TotalPages:      totalPages,
				StartIndex:      startIndex,
				EndIndex:        reportedEnd,
				HasNextPage:     req.Page < totalPages,
				HasPreviousPage: req.Page > 1,
			},
		},
	}, nil
}
