package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"realestate/server/config"
	"realestate/server/internal/api"
	"realestate/server/internal/auth"
	"realestate/server/internal/database"
	"realestate/server/internal/listings"
	"realestate/server/internal/models"
	"realestate/server/internal/sales"
	"realestate/server/internal/tours"
)

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			if a.logger.IsLevelEnabled(logrus.DebugLevel) {
				gin.SetMode(gin.DebugMode)
			} else {
				gin.SetMode(gin.ReleaseMode)
			}

			handler := api.NewHandler(
				listings.NewService(db.GetDB(), a.logger),
				sales.NewService(db.GetDB(), a.cfg, a.logger),
				tours.NewService(db.GetDB(), a.logger),
				a.logger,
			)
			authn := api.NewAuthenticator(auth.NewIssuer(a.cfg.Auth.JWTSecret, a.cfg.Auth.TokenTTL), db.GetDB(), a.logger)
			router := api.NewRouter(handler, authn, a.cfg.Server.AllowedOrigins)

			a.logger.Infof("Starting server on port %s", a.cfg.Server.Port)
			if err := router.Run(":" + a.cfg.Server.Port); err != nil {
				return fmt.Errorf("server failed to start: %w", err)
			}
			return nil
		},
	}
}

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()
			a.logger.Info("Database schema is up to date")
			return nil
		},
	}
}

func (a *app) seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file>",
		Short: "Load municipalities from a JSON seed file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seeds, err := config.LoadMunicipalitySeeds(args[0])
			if err != nil {
				return err
			}

			db, err := a.openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			created, err := database.SeedMunicipalities(db.GetDB(), seeds)
			if err != nil {
				return fmt.Errorf("failed to seed municipalities: %w", err)
			}
			a.logger.Infof("Seeded %d of %d municipalities", created, len(seeds))
			return nil
		},
	}
}

func (a *app) userCmd() *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	var role string
	createCmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Create a user with a role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := models.Role(role)
			if !r.Valid() {
				return fmt.Errorf("unknown role %q", role)
			}

			db, err := a.openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			user := models.User{Username: args[0], Role: r}
			if err := database.CreateUser(db.GetDB(), &user); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %d (%s, %s)\n", user.ID, user.Username, user.Role)
			return nil
		},
	}
	createCmd.Flags().StringVar(&role, "role", string(models.RoleBuyer), "Admin, Agent, Owner or Buyer")

	userCmd.AddCommand(createCmd)
	return userCmd
}

func (a *app) tokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token <user-id>",
		Short: "Issue an access token for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			db, err := a.openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			user, err := database.GetUser(db.GetDB(), id, false)
			if err != nil {
				return err
			}
			token, err := auth.NewIssuer(a.cfg.Auth.JWTSecret, a.cfg.Auth.TokenTTL).Issue(*user)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}

func (a *app) priceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "price <property-id>",
		Short: "Print the current reference price of a property",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			db, err := a.openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			price, err := listings.NewService(db.GetDB(), a.logger).RecalculatePrice(context.Background(), id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), price.StringFixed(2))
			return nil
		},
	}
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint(id), nil
}
