// cmd/seeduser/main.go: Crea o restablece un usuario.
// Uso: go run ./cmd/seeduser -email admin@storevision.com -password admin123
package main

import (
	"context"
	"flag"
	"os"
	"strings"

	"storevision/internal/infra"
	"storevision/internal/model"
	"storevision/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm/clause"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	dsn := flag.String("dsn", os.Getenv("DATABASE_URL"), "database DSN")
	email := flag.String("email", "admin@storevision.com", "email del usuario")
	nombre := flag.String("nombre", "Administradora", "nombre visible")
	password := flag.String("password", "", "contraseña en texto plano")
	rol := flag.String("rol", model.RolAdministradora, "administradora | cajero")
	flag.Parse()

	if *password == "" {
		log.Fatal().Msg("-password es obligatorio")
	}
	if *rol != model.RolAdministradora && *rol != model.RolCajero {
		log.Fatal().Str("rol", *rol).Msg("rol inválido")
	}

	db, err := infra.NewDatabase(*dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect error")
	}

	hash, err := service.HashPassword(*password)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt error")
	}

	u := model.Usuario{
		Email:        strings.ToLower(strings.TrimSpace(*email)),
		Nombre:       *nombre,
		PasswordHash: hash,
		Rol:          *rol,
		Activo:       true,
	}
	err = db.WithContext(context.Background()).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"nombre", "password_hash", "rol", "activo"}),
	}).Create(&u).Error
	if err != nil {
		log.Fatal().Err(err).Msg("upsert error")
	}
	log.Info().Str("email", u.Email).Str("rol", u.Rol).Msg("usuario creado/actualizado")
}
