// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package failure

// Kind is the fixed taxonomy of submission failures.
type Kind string

const (
	KindNone                Kind = ""
	KindValidationRejected  Kind = "ValidationRejected"
	KindTimeout             Kind = "Timeout"
	KindServerRejected      Kind = "ServerRejected"
	KindNetworkUnreachable  Kind = "NetworkUnreachable"
	KindCaptionsUnavailable Kind = "CaptionsUnavailable"
	KindInvalidURLFormat    Kind = "InvalidUrlFormat"
	KindServerMisconfigured Kind = "ServerMisconfigured"
	KindEmptySummary        Kind = "EmptySummary"
	KindUnknown             Kind = "Unknown"
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	if k == KindNone {
		return "None"
	}
	return string(k)
}

// Reason says where in the request lifecycle a failure was raised.
type Reason int

const (
	// ReasonOther is any failure not covered below.
	ReasonOther Reason = iota
	// ReasonDeadline means the session timer fired before the request settled.
	ReasonDeadline
	// ReasonHTTPStatus means the backend answered with a non-2xx status.
	ReasonHTTPStatus
	// ReasonTransport means the request never produced a response.
	ReasonTransport
	// ReasonEmptySummary means a 2xx response carried no summary.
	ReasonEmptySummary
)

// String returns the string representation of the reason.
func (r Reason) String() string {
	switch r {
	case ReasonDeadline:
		return "deadline"
	case ReasonHTTPStatus:
		return "http_status"
	case ReasonTransport:
		return "transport"
	case ReasonEmptySummary:
		return "empty_summary"
	default:
		return "other"
	}
}
