package model

import "strings"

// Status is the moderation state of a listing. The three constants below are
// the only legal values; ParseStatus is the sole way to obtain one from
// untrusted input.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ParseStatus normalizes s and reports whether it names a known status.
func ParseStatus(s string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending, true
	case StatusApproved:
		return StatusApproved, true
	case StatusRejected:
		return StatusRejected, true
	}
	return "", false
}

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// VisibleToPublic reports whether a listing with this status may appear in
// public search results. Rows imported before moderation existed carry an
// empty status and count as approved.
func (s Status) VisibleToPublic() bool {
	return s == StatusApproved || s == ""
}
