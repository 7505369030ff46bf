package identity

import (
	"context"

	"golang.org/x/crypto/bcrypt"
)

// SeedDemoAccounts loads the checkpoint's demo credential table. These mirror
// the four profiles the original paper process used and are not a security
// boundary.
func SeedDemoAccounts(ctx context.Context, store AccountStore) error {
	demo := []struct {
		account  Account
		password string
	}{
		{
			account: Account{
				User: User{
					ID:          "ADFU12",
					Name:        "Carlos Mendoza",
					Role:        RoleAdministrator,
					Permissions: []string{PermValidate, PermReports, PermAdmin, PermOffline},
				},
				Email: "admin@samore.cl",
			},
			password: "Admin123!",
		},
		{
			account: Account{
				User: User{
					ID:          "TUR001",
					Name:        "María García",
					Role:        RoleTourist,
					Permissions: []string{PermDeclarations, PermUpload},
				},
				Email: "turista@samore.cl",
			},
			password: "Turista123!",
		},
		{
			account: Account{
				User: User{
					ID:          "TRANS202",
					Name:        "Roberto Silva",
					Role:        RoleCarrier,
					Permissions: []string{PermVehicles, PermStatus},
				},
				Email: "transportista@samore.cl",
			},
			password: "Trans123!",
		},
		{
			account: Account{
				User: User{
					ID:          "SAG_AGENT",
					Name:        "Ana López",
					Role:        RoleInspectionAgent,
					Permissions: []string{PermFoodValidation, PermPetValidation},
				},
				Email: "sag@samore.cl",
			},
			password: "Sag123!",
		},
	}

	for _, d := range demo {
		hash, err := bcrypt.GenerateFromPassword([]byte(d.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		d.account.PasswordHash = string(hash)
		if err := store.Save(ctx, d.account); err != nil {
			return err
		}
	}
	return nil
}
