package sheets

import (
	"context"
	"fmt"

	drive_v3 "google.golang.org/api/drive/v3"
)

// Permission roles and grantee types accepted by the Drive sharing API.
const (
	RoleReader    = "reader"
	RoleCommenter = "commenter"
	RoleWriter    = "writer"
	RoleOwner     = "owner"

	GranteeUser   = "user"
	GranteeGroup  = "group"
	GranteeDomain = "domain"
	GranteeAnyone = "anyone"
)

// PermissionSpec describes one sharing grant on a spreadsheet.
type PermissionSpec struct {
	// Role is the access level: reader, commenter, writer, or owner
	Role string

	// Type is the grantee kind: user, group, domain, or anyone
	Type string

	// EmailAddress identifies the grantee for user and group grants
	EmailAddress string

	// Domain identifies the grantee for domain grants
	Domain string

	// AllowFileDiscovery lets domain and anyone grants find the file in search
	AllowFileDiscovery bool

	// TransferOwnership must accompany the owner role
	TransferOwnership bool

	// SendNotification sends the grantee a sharing email
	SendNotification bool

	// EmailMessage is an optional note in the notification email
	EmailMessage string
}

// Validate checks the grant locally before any Drive call.
func (p *PermissionSpec) Validate() error {
	switch p.Role {
	case RoleReader, RoleCommenter, RoleWriter, RoleOwner:
	default:
		return validationErrorf(ValidationInvalidEnum, "role", "unsupported role %q", p.Role)
	}

	switch p.Type {
	case GranteeUser, GranteeGroup:
		if p.EmailAddress == "" {
			return validationErrorf(ValidationBadValue, "email_address", "required for %s grants", p.Type)
		}
	case GranteeDomain:
		if p.Domain == "" {
			return validationErrorf(ValidationBadValue, "domain", "required for domain grants")
		}
	case GranteeAnyone:
	default:
		return validationErrorf(ValidationInvalidEnum, "type", "unsupported grantee type %q", p.Type)
	}

	if p.TransferOwnership && p.Role != RoleOwner {
		return validationErrorf(ValidationBadValue, "transfer_ownership", "only valid with the owner role")
	}
	if p.Role == RoleOwner && !p.TransferOwnership {
		return validationErrorf(ValidationBadValue, "role", "the owner role requires transfer_ownership")
	}
	return nil
}

// PermissionInfo reports a created sharing grant.
type PermissionInfo struct {
	// ID is the permission ID, usable for later updates or deletion
	ID string `json:"id"`

	// Role and Type echo the granted access
	Role string `json:"role"`
	Type string `json:"type"`

	// EmailAddress is set for user and group grants
	EmailAddress string `json:"emailAddress,omitempty"`

	// Domain is set for domain grants
	Domain string `json:"domain,omitempty"`

	// AllowFileDiscovery reports search visibility for domain and anyone grants
	AllowFileDiscovery bool `json:"allowFileDiscovery,omitempty"`
}

// ManagePermissions creates a sharing grant on a spreadsheet through the
// Drive permissions API.
func (c *Client) ManagePermissions(ctx context.Context, spreadsheetID string, spec *PermissionSpec) (*PermissionInfo, error) {
	if spreadsheetID == "" {
		return nil, validationErrorf(ValidationBadValue, "spreadsheet_id", "spreadsheet ID is required")
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	perm := &drive_v3.Permission{Role: spec.Role, Type: spec.Type}
	switch spec.Type {
	case GranteeUser, GranteeGroup:
		perm.EmailAddress = spec.EmailAddress
	case GranteeDomain:
		perm.Domain = spec.Domain
		perm.AllowFileDiscovery = spec.AllowFileDiscovery
	case GranteeAnyone:
		perm.AllowFileDiscovery = spec.AllowFileDiscovery
	}

	call := c.drive.Permissions.Create(spreadsheetID, perm).
		SendNotificationEmail(spec.SendNotification).
		Context(ctx)
	if spec.SendNotification && spec.EmailMessage != "" {
		call = call.EmailMessage(spec.EmailMessage)
	}
	if spec.TransferOwnership {
		// The Drive API insists on notifying the new owner.
		call = call.TransferOwnership(true).SendNotificationEmail(true)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to share spreadsheet %s: %w", spreadsheetID, err)
	}

	return &PermissionInfo{
		ID:                 resp.Id,
		Role:               resp.Role,
		Type:               resp.Type,
		EmailAddress:       resp.EmailAddress,
		Domain:             resp.Domain,
		AllowFileDiscovery: resp.AllowFileDiscovery,
	}, nil
}
