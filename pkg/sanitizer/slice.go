package sanitizer

// NormalizeStringSlice applies normalizer to each element, dropping
// empties and duplicates while preserving first-seen order.
func NormalizeStringSlice(items []string, normalizer func(string) string) []string {
	if len(items) == 0 {
		return []string{}
	}

	seen := make(map[string]bool)
	result := make([]string, 0, len(items))

	for _, item := range items {
		normalized := normalizer(item)
		if normalized == "" {
			continue
		}
		if seen[normalized] {
			continue
		}
		seen[normalized] = true
		result = append(result, normalized)
	}

	return result
}

// NormalizeParticipants dedupes and trims a participant id list.
func NormalizeParticipants(participants []string) []string {
	return NormalizeStringSlice(participants, TrimAndNormalize)
}
