package model

import (
	"encoding/json"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NormalizeID reduces the identifier formats that arrive at a store
// boundary to a plain hex string. Legacy clients send either the hex id
// itself or a serialized document ({"_id": "..."}) where an id was
// expected; both are accepted, everything else is returned trimmed so
// validation can reject it.
func NormalizeID(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}

	if strings.HasPrefix(value, "{") {
		var doc struct {
			ID string `json:"_id"`
		}
		if err := json.Unmarshal([]byte(value), &doc); err == nil && doc.ID != "" {
			return strings.TrimSpace(doc.ID)
		}
	}

	return value
}

// IsValidID reports whether value is a well-formed ObjectID hex string.
func IsValidID(value string) bool {
	_, err := primitive.ObjectIDFromHex(value)
	return err == nil
}
