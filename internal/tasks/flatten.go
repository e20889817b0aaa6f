package tasks

import (
	"strconv"
	"strings"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/services"
)

// FlattenRelease turns a collection entry into a release row.
//
// Catalog numbers, label names, artist names and formats are de-duplicated keeping the first occurrence; artist
// ids, genres and styles are kept as listed. Multi-value fields are pipe-joined and formats, genres and styles are
// lower-cased. Every string has `"` replaced with `''`.
func FlattenRelease(item services.CollectionItem) models.Release {
	info := item.BasicInformation

	var catalogNumbers, labelNames []string
	for _, label := range info.Labels {
		catalogNumbers = append(catalogNumbers, label.CatNo)
		labelNames = append(labelNames, label.Name)
	}

	var artistNames, artistIDs []string
	for _, artist := range info.Artists {
		artistNames = append(artistNames, artist.Name)
		artistIDs = append(artistIDs, strconv.FormatInt(artist.ID, 10))
	}

	var formats []string
	for _, format := range info.Formats {
		formats = append(formats, format.Name)
		formats = append(formats, format.Descriptions...)
	}

	id := info.ID
	if id == 0 {
		id = item.ID
	}

	return models.Release{
		ReleaseID:  id,
		FolderID:   item.FolderID,
		CatalogID:  escape(join(models.Dedupe(catalogNumbers))),
		ArtistsID:  escape(join(artistIDs)),
		DateAdded:  escape(dateAdded(item.DateAdded)),
		Year:       info.Year,
		Decade:     Decade(info.Year),
		Artist:     escape(join(models.Dedupe(artistNames))),
		Title:      escape(info.Title),
		Label:      escape(join(models.Dedupe(labelNames))),
		Format:     strings.ToLower(escape(join(models.Dedupe(formats)))),
		Genre:      strings.ToLower(escape(join(info.Genres))),
		Style:      strings.ToLower(escape(join(info.Styles))),
		ReleaseURL: escape(info.ResourceURL),
		MasterURL:  escape(info.MasterURL),
		ThumbURL:   escape(info.Thumb),
		CoverURL:   escape(info.CoverImage),
	}
}

// Decade replaces the last digit of year with zero.
func Decade(year int) int {
	return year - year%10
}

func join(tokens []string) string {
	return models.NewMultiValue(tokens...).Join()
}

func escape(s string) string {
	return strings.ReplaceAll(s, `"`, `''`)
}

// dateAdded keeps the first 19 characters of an ISO timestamp with the date/time separator replaced by a space.
func dateAdded(ts string) string {
	if len(ts) > 19 {
		ts = ts[:19]
	}
	return strings.Replace(ts, "T", " ", 1)
}
