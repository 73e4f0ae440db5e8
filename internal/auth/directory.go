package auth

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/inventory-api/inventory-api/internal/docstore"
)

// RolesCollection is the document store collection holding the role catalog.
const RolesCollection = "roles"

// RoleDocument is a persisted role, keyed by its name.
type RoleDocument struct {
	Name        Role         `json:"name"`
	Permissions []Permission `json:"permissions"`
	IsActive    bool         `json:"isActive"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// RoleInput is the payload of CreateRole.
type RoleInput struct {
	Name        string
	Permissions []string
}

// PatchMode selects how UpdateRole applies a permission list.
type PatchMode int

const (
	// PatchReplace replaces the stored permission set.
	PatchReplace PatchMode = iota
	// PatchMerge adds the given permissions to the stored set.
	PatchMerge
)

// RolePatch is the payload of UpdateRole. Nil fields are left untouched.
type RolePatch struct {
	Permissions []string
	Mode        PatchMode
	IsActive    *bool
}

// RoleDirectory is the persisted role catalog. Each operation acquires its own
// connection from the driver and releases it before returning.
type RoleDirectory struct {
	driver docstore.Driver
	now    func() time.Time
}

// DirectoryOption configures a RoleDirectory.
type DirectoryOption func(*RoleDirectory)

// WithDirectoryClock replaces time.Now for the document timestamps.
func WithDirectoryClock(now func() time.Time) DirectoryOption {
	return func(d *RoleDirectory) {
		d.now = now
	}
}

// NewRoleDirectory creates a role directory on driver.
func NewRoleDirectory(driver docstore.Driver, opts ...DirectoryOption) *RoleDirectory {
	d := &RoleDirectory{
		driver: driver,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *RoleDirectory) withRoles(ctx context.Context, op string, fn func(docstore.Collection) error) error {
	conn, err := d.driver.Connect(ctx)
	if err != nil {
		return storageError(op, err)
	}

	defer func() {
		if errClose := conn.Close(); errClose != nil {
			log.Warn().Err(errClose).Str("op", op).Msg("failed to release document store connection")
		}
	}()

	return fn(conn.Collection(RolesCollection))
}

// normalizePermissions validates raw permissions and returns them deduplicated and sorted.
func normalizePermissions(raw []string) ([]Permission, error) {
	perms, err := ParsePermissions(raw)
	if err != nil {
		return nil, err
	}

	return NewPermissionSet(perms).Slice(), nil
}

// CreateRole stores a new active role. A soft-deleted role with the same name
// is revived with the new permission set.
func (d *RoleDirectory) CreateRole(ctx context.Context, input RoleInput) (*RoleDocument, error) {
	if input.Name == "" || input.Permissions == nil {
		return nil, ErrInvalidInput
	}

	name, err := ParseRole(input.Name)
	if err != nil {
		return nil, err
	}

	perms, err := normalizePermissions(input.Permissions)
	if err != nil {
		return nil, err
	}

	now := d.now()
	doc := &RoleDocument{
		Name:        name,
		Permissions: perms,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = d.withRoles(ctx, "create role", func(roles docstore.Collection) error {
		err := docstore.InsertJSON(ctx, roles, string(name), doc)
		if !errors.Is(err, docstore.ErrDuplicateKey) {
			return err
		}

		revived, err := docstore.UpdateJSON(ctx, roles, string(name), func(existing *RoleDocument) error {
			if existing.IsActive {
				return roleAlreadyExists(name)
			}

			*existing = *doc

			return nil
		})
		if err != nil {
			return err
		}

		doc = revived

		return nil
	})
	if err != nil {
		return nil, mapRoleError("create role", err)
	}

	log.Info().Str("role", string(name)).Int("permissions", len(perms)).Msg("role created")

	return doc, nil
}

// GetRoleByName returns the active role called name, or nil when there is none.
func (d *RoleDirectory) GetRoleByName(ctx context.Context, name string) (*RoleDocument, error) {
	role, err := ParseRole(name)
	if err != nil {
		return nil, err
	}

	var doc *RoleDocument

	err = d.withRoles(ctx, "get role", func(roles docstore.Collection) error {
		found, err := docstore.GetJSON[RoleDocument](ctx, roles, string(role))
		if errors.Is(err, docstore.ErrNotFound) {
			return nil
		}

		if err != nil {
			return err
		}

		if found.IsActive {
			doc = found
		}

		return nil
	})
	if err != nil {
		return nil, mapRoleError("get role", err)
	}

	return doc, nil
}

// GetAllRoles returns the active roles ordered by name.
func (d *RoleDirectory) GetAllRoles(ctx context.Context) ([]RoleDocument, error) {
	out := make([]RoleDocument, 0, len(ValidRoles))

	err := d.withRoles(ctx, "list roles", func(roles docstore.Collection) error {
		docs, err := docstore.ListJSON[RoleDocument](ctx, roles)
		if err != nil {
			return err
		}

		for _, doc := range docs {
			if doc.IsActive {
				out = append(out, doc)
			}
		}

		return nil
	})
	if err != nil {
		return nil, mapRoleError("list roles", err)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out, nil
}

// UpdateRole applies patch to the active role called name in one atomic
// find-and-update. Concurrent writers to the same role: the last one wins.
func (d *RoleDirectory) UpdateRole(ctx context.Context, name string, patch RolePatch) (*RoleDocument, error) {
	role, err := ParseRole(name)
	if err != nil {
		return nil, err
	}

	var perms []Permission
	if patch.Permissions != nil {
		if perms, err = normalizePermissions(patch.Permissions); err != nil {
			return nil, err
		}
	}

	if patch.IsActive != nil && !*patch.IsActive && role == RoleAdmin {
		return nil, protectedRole()
	}

	if patch.Permissions != nil && role == RoleAdmin {
		if !grantsEverything(perms) {
			return nil, protectedAdminPermissions()
		}

		perms = AllPermissions()
	}

	var updated *RoleDocument

	err = d.withRoles(ctx, "update role", func(roles docstore.Collection) error {
		var err error

		updated, err = docstore.UpdateJSON(ctx, roles, string(role), func(doc *RoleDocument) error {
			if !doc.IsActive {
				return roleNotFound(role)
			}

			if patch.Permissions != nil {
				switch patch.Mode {
				case PatchMerge:
					doc.Permissions = NewPermissionSet(doc.Permissions, perms).Slice()
				default:
					doc.Permissions = perms
				}
			}

			if patch.IsActive != nil {
				doc.IsActive = *patch.IsActive
			}

			doc.UpdatedAt = d.now()

			return nil
		})

		return err
	})
	if err != nil {
		return nil, mapRoleError("update role", notFoundAs(err, role))
	}

	log.Info().Str("role", string(role)).Msg("role updated")

	return updated, nil
}

// DeleteRole soft deletes the role called name. The administrative role can
// never be deleted.
func (d *RoleDirectory) DeleteRole(ctx context.Context, name string) error {
	role, err := ParseRole(name)
	if err != nil {
		return err
	}

	if role == RoleAdmin {
		return protectedRole()
	}

	err = d.withRoles(ctx, "delete role", func(roles docstore.Collection) error {
		_, err := docstore.UpdateJSON(ctx, roles, string(role), func(doc *RoleDocument) error {
			if !doc.IsActive {
				return roleNotFound(role)
			}

			doc.IsActive = false
			doc.UpdatedAt = d.now()

			return nil
		})

		return err
	})
	if err != nil {
		return mapRoleError("delete role", notFoundAs(err, role))
	}

	log.Info().Str("role", string(role)).Msg("role deleted")

	return nil
}

// PurgeRole removes the role document called name, active or not.
func (d *RoleDirectory) PurgeRole(ctx context.Context, name string) error {
	role, err := ParseRole(name)
	if err != nil {
		return err
	}

	if role == RoleAdmin {
		return protectedRole()
	}

	err = d.withRoles(ctx, "purge role", func(roles docstore.Collection) error {
		return roles.Delete(ctx, string(role))
	})
	if err != nil {
		return mapRoleError("purge role", notFoundAs(err, role))
	}

	log.Info().Str("role", string(role)).Msg("role purged")

	return nil
}

// InitializeDefaultRoles creates every built-in role that is missing, using the
// static permission table. Existing roles are never overwritten, except that a
// stored admin role missing part of the vocabulary is widened to all of it.
func (d *RoleDirectory) InitializeDefaultRoles(ctx context.Context) (int, error) {
	created := 0

	for _, role := range ValidRoles {
		existing, err := d.GetRoleByName(ctx, string(role))
		if err != nil {
			return created, err
		}

		if existing != nil && role == RoleAdmin && !grantsEverything(existing.Permissions) {
			if _, err = d.UpdateRole(ctx, string(role), RolePatch{Permissions: Strings(AllPermissions())}); err != nil {
				return created, err
			}

			log.Info().Msg("admin role widened to the full permission vocabulary")

			continue
		}

		if existing != nil {
			log.Debug().Str("role", string(role)).Msg("default role already present")
			continue
		}

		_, err = d.CreateRole(ctx, RoleInput{
			Name:        string(role),
			Permissions: Strings(DefaultPermissions(role)),
		})

		switch {
		case errors.Is(err, ErrRoleAlreadyExists):
			// created concurrently by another process
			continue
		case err != nil:
			return created, err
		}

		created++
	}

	if created > 0 {
		log.Info().Int("created", created).Msg("default roles initialized")
	}

	return created, nil
}

// grantsEverything reports whether perms covers the whole vocabulary.
func grantsEverything(perms []Permission) bool {
	set := NewPermissionSet(perms)

	for _, p := range allPermissions {
		if !set.Has(p) {
			return false
		}
	}

	return true
}

// notFoundAs turns a missing document into the role level not found error.
func notFoundAs(err error, role Role) error {
	if errors.Is(err, docstore.ErrNotFound) {
		return roleNotFound(role)
	}

	return err
}

// mapRoleError passes role errors through and wraps everything else as ErrStorage.
func mapRoleError(op string, err error) error {
	var roleErr *RoleError
	if errors.As(err, &roleErr) || errors.Is(err, ErrStorage) {
		return err
	}

	return storageError(op, err)
}
