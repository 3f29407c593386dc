package models

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewID returns a fresh 24-character hex identifier. Every store uses the
// same format so IDs look identical regardless of backend.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// IsValidID accepts only the lowercase hex form NewID produces, so a path or
// body ID resolves the same way on every backend.
func IsValidID(id string) bool {
	return id == strings.ToLower(id) && primitive.IsValidObjectID(id)
}

// UniqueIDs drops repeated IDs, keeping first-seen order.
func UniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
