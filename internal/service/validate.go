package service

import (
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"go-gin-gorm-auth/internal/core/errs"
	"go-gin-gorm-auth/internal/domain"
	"go-gin-gorm-auth/pkg/utils"
)

const (
	usernameMin = 5
	usernameMax = 20
)

var validate = validator.New()

func checkUsername(u string) error {
	if u == "" {
		return errs.New(errs.UsernameRequired)
	}
	if n := utf8.RuneCountInString(u); n < usernameMin || n > usernameMax {
		return errs.New(errs.UsernameLength)
	}
	if validate.Var(u, "alphanum") != nil {
		return errs.New(errs.UsernameAlphanumeric)
	}
	return nil
}

func checkEmail(e string) error {
	if e == "" {
		return errs.New(errs.EmailRequired)
	}
	if validate.Var(e, "email") != nil {
		return errs.New(errs.EmailInvalid)
	}
	return nil
}

func checkGender(g *domain.Gender) error {
	if g == nil {
		return nil
	}
	switch *g {
	case domain.GenderMale, domain.GenderFemale:
		return nil
	}
	return errs.New(errs.GenderInvalid)
}

func checkPatch(p domain.UserPatch) error {
	if p.Firstname != nil && strings.TrimSpace(*p.Firstname) == "" {
		return errs.New(errs.FirstnameRequired)
	}
	if p.Lastname != nil && strings.TrimSpace(*p.Lastname) == "" {
		return errs.New(errs.LastnameRequired)
	}
	if p.Email != nil {
		if err := checkEmail(*p.Email); err != nil {
			return err
		}
	}
	return checkGender(p.Gender)
}

// requireID 空 -> code；非 UUID -> UUID_SYNTAX_ERROR
func requireID(id string, code errs.Code) error {
	if id == "" {
		return errs.New(code)
	}
	if !utils.IsUUID(id) {
		return errs.New(errs.UUIDSyntaxError)
	}
	return nil
}
