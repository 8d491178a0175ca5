// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"tagpress/internal/errs"
	"tagpress/internal/models"
)

func TestTagStoreCreateAndFind(t *testing.T) {
	db := testDB(t)
	s := NewTagStore(db)

	name := "새태그-" + uuid.NewString()[:8]
	t.Cleanup(func() { cleanTags(t, db, name) })

	if _, err := s.FindByName(name); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("FindByName before create: got %v, want ErrNotFound", err)
	}

	created, err := s.Create(&models.Tag{Name: name, Slug: name})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Error("expected non-nil UUID")
	}

	found, err := s.FindByName(name)
	if err != nil {
		t.Fatalf("FindByName: %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID mismatch: got %s, want %s", found.ID, created.ID)
	}

	bySlug, err := s.FindBySlug(name)
	if err != nil {
		t.Fatalf("FindBySlug: %v", err)
	}
	if bySlug.ID != created.ID {
		t.Errorf("FindBySlug ID mismatch: got %s, want %s", bySlug.ID, created.ID)
	}
}

func TestTagStoreCreateConflict(t *testing.T) {
	db := testDB(t)
	s := NewTagStore(db)

	suffix := uuid.NewString()[:8]
	name := "conflict-" + suffix
	t.Cleanup(func() { cleanTags(t, db, name, "Conflict-"+suffix) })

	if _, err := s.Create(&models.Tag{Name: name, Slug: name}); err != nil {
		t.Fatalf("first Create: %v", err)
	}

	// Same name.
	_, err := s.Create(&models.Tag{Name: name, Slug: name + "-other"})
	if !errors.Is(err, errs.ErrConflict) {
		t.Errorf("duplicate name: got %v, want ErrConflict", err)
	}

	// Different name, same slug.
	_, err = s.Create(&models.Tag{Name: "Conflict-" + suffix, Slug: name})
	if !errors.Is(err, errs.ErrConflict) {
		t.Errorf("duplicate slug: got %v, want ErrConflict", err)
	}
}
