package domain

import (
	"slices"
	"time"
)

// ChangeTag classifies an overlay node. The zero value means unchanged.
// Deleted genres never appear in an overlay, so there is no DELETED tag.
type ChangeTag string

// Change tags.
const (
	ChangeNone    ChangeTag = ""
	ChangeCreated ChangeTag = "CREATED"
	ChangeEdited  ChangeTag = "EDITED"
)

// CreatedGenre is a genre that exists only inside a correction.
type CreatedGenre struct {
	LocalID int        `json:"local_id"`
	Data    GenreDraft `json:"data"`
}

// EditedGenre is a full replacement draft for a persisted genre.
type EditedGenre struct {
	TargetID int        `json:"target_genre_id"`
	Draft    GenreDraft `json:"updated_genre"`
}

// Correction is a named, attributable set of pending changes against the base taxonomy.
// A persisted genre appears in at most one of Edit and Delete.
type Correction struct {
	ID        string         `json:"id"`
	Name      string         `json:"name,omitempty"`
	CreatorID string         `json:"creator_id"`
	Create    []CreatedGenre `json:"create"`
	Edit      []EditedGenre  `json:"edit"`
	Delete    []int          `json:"delete"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	MergedAt  *time.Time     `json:"merged_at,omitempty"`
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
func (c *Correction) InitTimestamps() {
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
}

// Touch updates the UpdatedAt timestamp to the current time.
func (c *Correction) Touch() {
	c.UpdatedAt = time.Now()
}

// IsMerged returns true once the correction has been applied to the base taxonomy.
func (c *Correction) IsMerged() bool {
	return c.MergedAt != nil
}

// IsEmpty reports whether the correction carries no changes.
func (c *Correction) IsEmpty() bool {
	return len(c.Create) == 0 && len(c.Edit) == 0 && len(c.Delete) == 0
}

// NextLocalID returns the next unused correction-local ID.
func (c *Correction) NextLocalID() int {
	next := 0
	for _, cg := range c.Create {
		if cg.LocalID >= next {
			next = cg.LocalID + 1
		}
	}
	return next
}

// Created returns the created genre with the given local ID.
func (c *Correction) Created(localID int) (*CreatedGenre, bool) {
	for i := range c.Create {
		if c.Create[i].LocalID == localID {
			return &c.Create[i], true
		}
	}
	return nil, false
}

// Edited returns the pending edit for a persisted genre.
func (c *Correction) Edited(genreID int) (*EditedGenre, bool) {
	for i := range c.Edit {
		if c.Edit[i].TargetID == genreID {
			return &c.Edit[i], true
		}
	}
	return nil, false
}

// IsDeleted reports whether the correction deletes the given genre.
func (c *Correction) IsDeleted(genreID int) bool {
	return slices.Contains(c.Delete, genreID)
}

// SetEdit records an edit, replacing any earlier edit or delete of the same genre.
func (c *Correction) SetEdit(genreID int, draft GenreDraft) {
	c.Delete = slices.DeleteFunc(c.Delete, func(id int) bool { return id == genreID })
	if e, ok := c.Edited(genreID); ok {
		e.Draft = draft
		return
	}
	c.Edit = append(c.Edit, EditedGenre{TargetID: genreID, Draft: draft})
}

// MarkDeleted records a delete, replacing any earlier edit of the same genre.
func (c *Correction) MarkDeleted(genreID int) {
	c.Edit = slices.DeleteFunc(c.Edit, func(e EditedGenre) bool { return e.TargetID == genreID })
	if !c.IsDeleted(genreID) {
		c.Delete = append(c.Delete, genreID)
	}
}

// RemovePending drops any edit or delete of the given genre.
// Returns false if there was nothing to remove.
func (c *Correction) RemovePending(genreID int) bool {
	before := len(c.Edit) + len(c.Delete)
	c.Edit = slices.DeleteFunc(c.Edit, func(e EditedGenre) bool { return e.TargetID == genreID })
	c.Delete = slices.DeleteFunc(c.Delete, func(id int) bool { return id == genreID })
	return len(c.Edit)+len(c.Delete) != before
}

// RemoveCreated drops a created genre and every reference to it from the
// other drafts of the correction. Returns false if the local ID is unknown.
func (c *Correction) RemoveCreated(localID int) bool {
	before := len(c.Create)
	c.Create = slices.DeleteFunc(c.Create, func(cg CreatedGenre) bool { return cg.LocalID == localID })
	if len(c.Create) == before {
		return false
	}
	ref := CreatedRef(localID)
	for i := range c.Create {
		c.Create[i].Data.DropReferencesTo(ref)
	}
	for i := range c.Edit {
		c.Edit[i].Draft.DropReferencesTo(ref)
	}
	return true
}
