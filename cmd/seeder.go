package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with a super admin account and sample projects for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		pool, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: pool.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			for _, table := range []string{"donations", "projects", "admins"} {
				if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
					log.Fatalf("failed to clear table %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		superAdminEmail := "super@mail.com"
		var exists int
		row := db.Raw("SELECT 1 FROM admins WHERE email = ?", superAdminEmail).Row()
		if err := row.Scan(&exists); err == nil {
			fmt.Println("super admin already exists:", superAdminEmail)
		} else {
			if err := db.Exec("INSERT INTO admins (email, name, password_hash, role, is_active, created_at, updated_at) VALUES (?, ?, ?, 'super_admin', true, now(), now())",
				superAdminEmail, "Super Admin", string(hash)).Error; err != nil {
				log.Fatalf("failed to insert super admin: %v", err)
			}
			fmt.Println("Seeded super admin:", superAdminEmail)
		}

		adminEmail := "admin@mail.com"
		row = db.Raw("SELECT 1 FROM admins WHERE email = ?", adminEmail).Row()
		if err := row.Scan(&exists); err == nil {
			fmt.Println("admin already exists:", adminEmail)
		} else {
			var superAdminID int64
			if err := db.Raw("SELECT id FROM admins WHERE email = ?", superAdminEmail).Row().Scan(&superAdminID); err != nil {
				log.Fatalf("failed to lookup super admin id: %v", err)
			}
			if err := db.Exec("INSERT INTO admins (email, name, password_hash, role, is_active, created_by, created_at, updated_at) VALUES (?, ?, ?, 'admin', true, ?, now(), now())",
				adminEmail, "Admin", string(hash), superAdminID).Error; err != nil {
				log.Fatalf("failed to insert admin: %v", err)
			}
			fmt.Println("Seeded admin:", adminEmail)
		}

		projects := []struct {
			Title string
			Desc  string
			Goal  int64
		}{
			{"Clean Water for Kibera", "Drill and equip three boreholes serving the Kibera community", 500000},
			{"School Lunch Programme", "Daily lunches for 200 primary school pupils for one term", 150000},
			{"Maternal Health Clinic", "Equip the Makueni maternal wing with delivery kits and beds", 750000},
			{"Tree Planting Drive", "Plant 10,000 indigenous seedlings across Ngong hills", 80000},
		}

		for _, p := range projects {
			row := db.Raw("SELECT 1 FROM projects WHERE title = ?", p.Title).Row()
			if err := row.Scan(&exists); err == nil {
				continue
			}
			if err := db.Exec("INSERT INTO projects (title, description, goal, raised, status, created_at, updated_at) VALUES (?, ?, ?, 0, 'active', now(), now())",
				p.Title, p.Desc, p.Goal).Error; err != nil {
				log.Fatalf("failed to insert project %s: %v", p.Title, err)
			}
			fmt.Printf("Seeded project: %s\n", p.Title)
		}

		fmt.Println("Seeding complete")
	},
}
