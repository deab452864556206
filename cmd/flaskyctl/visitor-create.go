package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/flasky-in-go/pkg/config"
	"github.com/doodlesbykumbi/flasky-in-go/pkg/form"
	"github.com/doodlesbykumbi/flasky-in-go/pkg/model"
	"github.com/doodlesbykumbi/flasky-in-go/pkg/server/store"
	gormstore "github.com/doodlesbykumbi/flasky-in-go/pkg/server/store/gorm"
)

var visitorCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a visitor without notifying the administrator",
	Long: `Create a visitor without notifying the administrator.

Use --role to assign the visitor to an existing role.

Example:
  flaskyctl visitor create john --role Admin`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		roleName, _ := cmd.Flags().GetString("role")

		name, err := form.ValidateName(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid name: %v\n", err)
			os.Exit(1)
		}

		err = withDatabase(func(ctx context.Context, cfg *config.Config, database *gorm.DB) error {
			v, err := createVisitor(ctx, database, cfg, name, roleName)
			if err != nil {
				return err
			}
			fmt.Printf("Created visitor %q (id: %d)\n", v.Username, v.ID)
			return nil
		})
		if errors.Is(err, store.ErrVisitorExists) {
			fmt.Fprintf(os.Stderr, "Visitor %q already exists\n", name)
			os.Exit(1)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create visitor: %v\n", err)
			os.Exit(1)
		}
	},
}

func createVisitor(ctx context.Context, database *gorm.DB, cfg *config.Config, name, roleName string) (*model.Visitor, error) {
	visitors := gormstore.NewVisitorsStore(database, cfg.StoreTimeout())
	if roleName == "" {
		return visitors.CreateVisitor(ctx, name)
	}

	role, err := gormstore.NewRolesStore(database, cfg.StoreTimeout()).FindRoleByName(ctx, roleName)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, fmt.Errorf("%w: %s", store.ErrRoleNotFound, roleName)
	}
	return visitors.CreateVisitorWithRole(ctx, name, role.ID)
}

func init() {
	visitorCmd.AddCommand(visitorCreateCmd)
	visitorCreateCmd.Flags().String("role", "", "name of an existing role")
}
