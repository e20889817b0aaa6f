// package services defines the remote catalog client interface and its Discogs implementation
package services

import (
	"context"
)

// Service defines the read-only operations the mirror and the release views need from the remote catalog.
type Service interface {
	// CollectionPage fetches one page of the user's collection, 1-based.
	CollectionPage(ctx context.Context, page int) (*CollectionPage, error)

	// Master fetches a master record, used to backfill release years.
	Master(ctx context.Context, masterID int64) (*Master, error)

	// Release fetches a release with its track listing and videos.
	Release(ctx context.Context, releaseID int64) (*ReleaseDetail, error)

	// Name returns the name of the service (e.g., "Discogs")
	Name() string
}

// Pagination is the paging envelope returned with list endpoints.
type Pagination struct {
	Page    int `json:"page"`
	Pages   int `json:"pages"`
	PerPage int `json:"per_page"`
	Items   int `json:"items"`
}

// CollectionPage is one page of collection entries.
type CollectionPage struct {
	Pagination Pagination       `json:"pagination"`
	Releases   []CollectionItem `json:"releases"`
}

// CollectionItem is a release instance in the user's collection.
type CollectionItem struct {
	ID               int64            `json:"id"`
	InstanceID       int64            `json:"instance_id"`
	FolderID         int64            `json:"folder_id"`
	Rating           int              `json:"rating"`
	DateAdded        string           `json:"date_added"`
	BasicInformation BasicInformation `json:"basic_information"`
}

// BasicInformation is the release summary embedded in collection entries.
type BasicInformation struct {
	ID          int64    `json:"id"`
	MasterID    int64    `json:"master_id"`
	MasterURL   string   `json:"master_url"`
	ResourceURL string   `json:"resource_url"`
	Title       string   `json:"title"`
	Year        int      `json:"year"`
	Thumb       string   `json:"thumb"`
	CoverImage  string   `json:"cover_image"`
	Labels      []Label  `json:"labels"`
	Artists     []Artist `json:"artists"`
	Formats     []Format `json:"formats"`
	Genres      []string `json:"genres"`
	Styles      []string `json:"styles"`
}

// Label is a label credit with its catalog number.
type Label struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	CatNo string `json:"catno"`
}

// Artist is an artist credit.
type Artist struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Join string `json:"join"`
}

// Format is a physical format and its descriptors (e.g. Vinyl with LP, Album).
type Format struct {
	Name         string   `json:"name"`
	Qty          string   `json:"qty"`
	Descriptions []string `json:"descriptions"`
}

// Master is the subset of a master record used for year backfill.
type Master struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Year  int    `json:"year"`
}

// ReleaseDetail is a full release record.
type ReleaseDetail struct {
	ID        int64    `json:"id"`
	Title     string   `json:"title"`
	Year      int      `json:"year"`
	Artists   []Artist `json:"artists"`
	Tracklist []Track  `json:"tracklist"`
	Videos    []Video  `json:"videos"`
}

// Track is a track listing entry. Type is "track", "heading" or "index".
type Track struct {
	Position string   `json:"position"`
	Type     string   `json:"type_"`
	Title    string   `json:"title"`
	Duration string   `json:"duration"`
	Artists  []Artist `json:"artists"`
}

// Video is a video linked from a release page.
type Video struct {
	URI         string `json:"uri"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Duration    int    `json:"duration"`
	Embed       bool   `json:"embed"`
}
