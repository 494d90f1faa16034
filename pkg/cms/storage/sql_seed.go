package storage

import (
	"context"

	"bqdigital/housekeeper/pkg/cms"
)

// The methods below write host data directly. The platform normally owns
// these writes; they exist for `housekeeper db seed` and for tests.

// CreateSite inserts a site and returns it with its assigned ID.
func (s *SQLStorage) CreateSite(ctx context.Context, name string) (cms.Site, error) {
	site := cms.Site{Name: name}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO sites (site_name) VALUES ($1) RETURNING site_id`, name,
	).Scan(&site.ID)
	if err != nil {
		return site, s.storageError("create_site", err)
	}
	return site, nil
}

// CreateDocument inserts a document and returns it with its assigned ID.
func (s *SQLStorage) CreateDocument(ctx context.Context, doc cms.Document) (cms.Document, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO documents (site_id, document_name, alias_path, published)
		VALUES ($1, $2, $3, $4) RETURNING document_id`,
		doc.SiteID, doc.Name, doc.AliasPath, doc.Published,
	).Scan(&doc.DocumentID)
	if err != nil {
		return doc, s.storageError("create_document", err)
	}
	return doc, nil
}

// AddObjectVersion inserts an object history record.
func (s *SQLStorage) AddObjectVersion(ctx context.Context, v cms.ObjectVersion) (cms.ObjectVersion, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO object_version_history (
			object_type, object_id, display_name, site_id, version_number, modified_when, deleted_when
		) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING version_id`,
		v.ObjectType, v.ObjectID, v.DisplayName, v.SiteID, v.VersionNumber, v.ModifiedWhen.UTC(), nullTime(v.DeletedWhen),
	).Scan(&v.VersionID)
	if err != nil {
		return v, s.storageError("add_object_version", err)
	}
	return v, nil
}

// AddPageVersion inserts a page history record.
func (s *SQLStorage) AddPageVersion(ctx context.Context, v cms.PageVersion) (cms.PageVersion, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO page_version_history (
			document_id, document_name, alias_path, site_id, modified_when, deleted_when
		) VALUES ($1, $2, $3, $4, $5, $6) RETURNING version_history_id`,
		v.DocumentID, v.DocumentName, v.AliasPath, v.SiteID, v.ModifiedWhen.UTC(), nullTime(v.DeletedWhen),
	).Scan(&v.VersionHistoryID)
	if err != nil {
		return v, s.storageError("add_page_version", err)
	}
	return v, nil
}

// CountObjectVersions returns the number of history records of an object.
func (s *SQLStorage) CountObjectVersions(ctx context.Context, objectType string, objectID int) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM object_version_history WHERE object_type = $1 AND object_id = $2`,
		objectType, objectID,
	).Scan(&n)
	if err != nil {
		return 0, s.storageError("count_object_versions", err)
	}
	return n, nil
}

// CountPageVersions returns the number of history records of a document.
func (s *SQLStorage) CountPageVersions(ctx context.Context, documentID int) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM page_version_history WHERE document_id = $1`, documentID,
	).Scan(&n)
	if err != nil {
		return 0, s.storageError("count_page_versions", err)
	}
	return n, nil
}
