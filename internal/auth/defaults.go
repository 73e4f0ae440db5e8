package auth

import "context"

// RoleDefaultsSource looks up the default permissions of a role.
type RoleDefaultsSource interface {
	RoleDefaults(ctx context.Context, role Role) ([]Permission, error)
}

// StaticRoleDefaults serves role defaults from the built-in table. Changes made
// through the RoleDirectory are not visible to it.
type StaticRoleDefaults struct{}

// RoleDefaults implements RoleDefaultsSource.
func (StaticRoleDefaults) RoleDefaults(_ context.Context, role Role) ([]Permission, error) {
	return DefaultPermissions(role), nil
}

// RoleDefaults implements RoleDefaultsSource on the persisted catalog, so role
// permission changes apply to tokens that were already issued. A role that is
// missing or inactive grants nothing. The admin role always grants the whole
// vocabulary, whatever is stored.
func (d *RoleDirectory) RoleDefaults(ctx context.Context, role Role) ([]Permission, error) {
	switch role {
	case "":
		return nil, nil
	case RoleAdmin:
		return AllPermissions(), nil
	}

	doc, err := d.GetRoleByName(ctx, string(role))
	if err != nil {
		return nil, err
	}

	if doc == nil {
		return nil, nil
	}

	return doc.Permissions, nil
}
