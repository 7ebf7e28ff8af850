package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		if clearData {
			tables := []string{
				"contributions", "designations", "attendances", "events", "members",
				"role_permissions", "permissions", "user_roles", "roles",
				"small_groups", "alumni_small_groups", "universities", "regions", "users",
			}
			for _, t := range tables {
				if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", t)); err != nil {
					log.Fatalf("failed to clear table %s: %v", t, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		adminEmail := "admin@ministry.local"
		var adminUserID int64
		if err := db.QueryRow("SELECT id FROM users WHERE email = $1", adminEmail).Scan(&adminUserID); err != nil {
			if err := db.QueryRow(
				"INSERT INTO users (email, name, password_hash, is_active, created_at, updated_at) VALUES ($1, $2, $3, true, now(), now()) RETURNING id",
				adminEmail, "Super Admin", string(hash),
			).Scan(&adminUserID); err != nil {
				log.Fatalf("failed to insert admin user: %v", err)
			}
			fmt.Println("Seeded admin user:", adminEmail)
		} else {
			fmt.Println("admin user already exists; will ensure scope and bindings")
		}

		roles := []struct {
			Name  string
			Desc  string
			Level string
		}{
			{"superadmin", "full administrator", "superadmin"},
			{"national_director", "oversees all regions", "national"},
			{"regional_director", "oversees one region", "region"},
			{"campus_leader", "oversees one university", "university"},
			{"small_group_leader", "leads one small group", "smallgroup"},
			{"alumni_leader", "leads one alumni small group", "alumnismallgroup"},
		}

		roleIDs := make(map[string]int64)
		for _, r := range roles {
			var rid int64
			if err := db.QueryRow("SELECT id FROM roles WHERE name = $1", r.Name).Scan(&rid); err != nil {
				if err := db.QueryRow(
					"INSERT INTO roles (name, description, level, is_active, is_system, created_at, updated_at) VALUES ($1, $2, $3, true, true, now(), now()) RETURNING id",
					r.Name, r.Desc, r.Level,
				).Scan(&rid); err != nil {
					log.Fatalf("failed to insert role %s: %v", r.Name, err)
				}
			}
			roleIDs[r.Name] = rid
		}

		permissions := []struct {
			Name     string
			Desc     string
			Resource string
			Action   string
			Scope    string
		}{
			{"members:read", "Can view members in scope", "member", "read", "smallgroup"},
			{"members:write", "Can manage members in scope", "member", "write", "smallgroup"},
			{"events:read", "Can view events in scope", "event", "read", "smallgroup"},
			{"events:write", "Can manage events and attendance in scope", "event", "write", "smallgroup"},
			{"contributions:read", "Can view contributions in scope", "contribution", "read", "smallgroup"},
			{"contributions:write", "Can record contributions in scope", "contribution", "write", "smallgroup"},
		}

		permIDs := make(map[string]int64)
		for _, p := range permissions {
			var pid int64
			if err := db.QueryRow("SELECT id FROM permissions WHERE name = $1", p.Name).Scan(&pid); err != nil {
				if err := db.QueryRow(
					"INSERT INTO permissions (name, description, resource, action, scope, is_active, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, true, now(), now()) RETURNING id",
					p.Name, p.Desc, p.Resource, p.Action, p.Scope,
				).Scan(&pid); err != nil {
					log.Fatalf("failed to insert permission %s: %v", p.Name, err)
				}
			}
			permIDs[p.Name] = pid
		}

		// Leadership roles get the full catalog; narrowing happens through
		// the scope assignment, not the bindings.
		for _, roleName := range []string{"superadmin", "national_director", "regional_director", "campus_leader", "small_group_leader", "alumni_leader"} {
			for _, p := range permissions {
				var exists int
				if err := db.QueryRow("SELECT 1 FROM role_permissions WHERE role_id = $1 AND permission_id = $2", roleIDs[roleName], permIDs[p.Name]).Scan(&exists); err == nil {
					continue
				}
				if _, err := db.Exec(
					"INSERT INTO role_permissions (role_id, permission_id, granted_by, granted_at) VALUES ($1, $2, NULL, now())",
					roleIDs[roleName], permIDs[p.Name],
				); err != nil {
					log.Fatalf("failed to bind permission %s to role %s: %v", p.Name, roleName, err)
				}
			}
		}
		fmt.Println("Bound permission catalog to leadership roles")

		var exists int
		if err := db.QueryRow("SELECT 1 FROM user_roles WHERE user_id = $1", adminUserID).Scan(&exists); err != nil {
			if _, err := db.Exec(
				"INSERT INTO user_roles (user_id, scope, role_id, assigned_by, assigned_at) VALUES ($1, 'superadmin', $2, NULL, now())",
				adminUserID, roleIDs["superadmin"],
			); err != nil {
				log.Fatalf("failed to assign superadmin scope: %v", err)
			}
			fmt.Println("Assigned superadmin scope to:", adminEmail)
		}

		regions := []string{"Jabodetabek", "Jawa Barat", "Jawa Timur", "Sumatera Utara"}
		for _, name := range regions {
			var rid int64
			if err := db.QueryRow("SELECT id FROM regions WHERE name = $1", name).Scan(&rid); err != nil {
				if _, err := db.Exec(
					"INSERT INTO regions (name, created_at, updated_at) VALUES ($1, now(), now())", name,
				); err != nil {
					log.Fatalf("failed to insert region %s: %v", name, err)
				}
				fmt.Printf("Seeded region: %s\n", name)
			}
		}

		designations := []struct {
			Name string
			Desc string
		}{
			{"umum", "persembahan umum"},
			{"misi", "dana misi dan pengutusan"},
			{"pembangunan", "dana pembangunan"},
			{"diakonia", "dana diakonia"},
		}
		for _, d := range designations {
			var did int64
			if err := db.QueryRow("SELECT id FROM designations WHERE name = $1", d.Name).Scan(&did); err != nil {
				if _, err := db.Exec(
					"INSERT INTO designations (name, description, is_active, created_at, updated_at) VALUES ($1, $2, true, now(), now())",
					d.Name, d.Desc,
				); err != nil {
					log.Fatalf("failed to insert designation %s: %v", d.Name, err)
				}
				fmt.Printf("Seeded designation: %s\n", d.Name)
			}
		}

		fmt.Println("Seeding completed successfully")
	},
}
