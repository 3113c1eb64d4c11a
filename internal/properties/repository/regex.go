package repository

import "regexp"

// regexQuoteMeta escapes user-supplied search text before it is
// embedded in a Mongo $regex, so metacharacters match literally.
func regexQuoteMeta(s string) string {
	return regexp.QuoteMeta(s)
}
