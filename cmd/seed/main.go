package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Yaesine/healthcare-appointment-system/internal/config"
	"github.com/Yaesine/healthcare-appointment-system/internal/db"
	"github.com/Yaesine/healthcare-appointment-system/internal/model"
	"github.com/Yaesine/healthcare-appointment-system/internal/repository"
)

type seedUser struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

var demoUsers = []seedUser{
	{Username: "alice", Email: "alice@example.com", Password: "pw123456", FirstName: "Alice", LastName: "Anderson"},
	{Username: "bob", Email: "bob@example.com", Password: "pw123456", FirstName: "Bob", LastName: "Brown"},
}

var demoDoctors = []string{"Dr. Smith", "Dr. Patel", "Dr. Okafor"}

func main() {
	log := logrus.New()
	log.Info("starting seed script")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if err := gormDB.AutoMigrate(&model.User{}, &model.Appointment{}); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	ctx := context.Background()
	userRepo := repository.NewUserRepository(gormDB)
	appointmentRepo := repository.NewAppointmentRepository(gormDB)

	users, err := seedUsers(ctx, userRepo)
	if err != nil {
		log.Fatalf("seed users: %v", err)
	}

	created, err := seedAppointments(ctx, appointmentRepo, users)
	if err != nil {
		log.Fatalf("seed appointments: %v", err)
	}

	log.WithFields(logrus.Fields{
		"users":        len(users),
		"appointments": created,
	}).Info("seed completed")
}

// seedUsers creates the demo users, skipping any username that already
// exists so the script stays idempotent.
func seedUsers(ctx context.Context, repo repository.UserRepository) ([]*model.User, error) {
	out := make([]*model.User, 0, len(demoUsers))
	for _, su := range demoUsers {
		existing, err := repo.FindByUsername(ctx, su.Username)
		if err == nil {
			out = append(out, existing)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("lookup %s: %w", su.Username, err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(su.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", su.Username, err)
		}

		user := &model.User{
			Username:     su.Username,
			Email:        su.Email,
			PasswordHash: string(hash),
			FirstName:    su.FirstName,
			LastName:     su.LastName,
		}
		if err := repo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("create %s: %w", su.Username, err)
		}
		out = append(out, user)
	}
	return out, nil
}

// seedAppointments books one future appointment per user/doctor pair,
// skipping slots that are already taken.
func seedAppointments(ctx context.Context, repo repository.AppointmentRepository, users []*model.User) (int, error) {
	created := 0
	base := time.Now().Add(24 * time.Hour).Truncate(time.Hour)

	for i, user := range users {
		doctor := demoDoctors[i%len(demoDoctors)]
		at := base.Add(time.Duration(i) * time.Hour)

		taken, err := repo.SlotTaken(ctx, doctor, at, uuid.Nil)
		if err != nil {
			return created, fmt.Errorf("check slot for %s: %w", doctor, err)
		}
		if taken {
			continue
		}

		appointment := &model.Appointment{
			UserID:              user.ID,
			DoctorName:          doctor,
			AppointmentDateTime: at.UTC(),
			Reason:              "routine checkup",
		}
		if err := repo.Create(ctx, appointment); err != nil {
			return created, fmt.Errorf("create appointment for %s: %w", user.Username, err)
		}
		created++
	}
	return created, nil
}
