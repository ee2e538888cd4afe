package models

import "testing"

func TestBaseModelBeforeCreateGeneratesID(t *testing.T) {
	var base BaseModel
	if err := base.BeforeCreate(nil); err != nil {
		t.Fatalf("before create: %v", err)
	}
	if base.ID == "" {
		t.Fatal("expected base model ID to be generated")
	}
}

func TestBeforeCreateGeneratesIDs(t *testing.T) {
	user := &User{}
	if err := user.BeforeCreate(nil); err != nil {
		t.Fatalf("user before create: %v", err)
	}
	if user.ID == "" {
		t.Fatal("expected user ID to be generated")
	}

	session := &Session{}
	if err := session.BeforeCreate(nil); err != nil {
		t.Fatalf("session before create: %v", err)
	}
	if session.ID == "" {
		t.Fatal("expected session ID to be generated")
	}
}

func TestBeforeCreatePreservesExistingID(t *testing.T) {
	user := &User{ID: "fixed-id"}
	if err := user.BeforeCreate(nil); err != nil {
		t.Fatalf("before create: %v", err)
	}
	if user.ID != "fixed-id" {
		t.Fatalf("expected ID to be preserved, got %q", user.ID)
	}
}
