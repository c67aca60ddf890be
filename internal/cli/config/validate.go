package config

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once

	sqlIdentRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)
)

// getValidator returns the shared validator with crowdstat's custom tags.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("koanf"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
		_ = validate.RegisterValidation("sqlident", func(fl validator.FieldLevel) bool {
			return sqlIdentRe.MatchString(fl.Field().String())
		})
	})
	return validate
}

// Validate checks the loaded configuration, including the nested target
// and thresholds.
func (c *Config) Validate() error {
	if err := getValidator().Struct(c); err != nil {
		return translate(err)
	}
	if c.Target.Type == "postgres" && c.Target.Database == "" {
		return fmt.Errorf("target.database is required for postgres")
	}
	return nil
}

// ValidateTarget validates a target configuration on its own.
func ValidateTarget(t *TargetConfig) error {
	if t == nil {
		return fmt.Errorf("target is required")
	}
	if err := getValidator().Struct(t); err != nil {
		return translate(err)
	}
	return nil
}

var messageWithParam = map[string]string{
	"oneof": "must be one of: %s",
	"gte":   "must be greater than or equal to %s",
	"lte":   "must be less than or equal to %s",
	"gt":    "must be greater than %s",
}

// translate turns validator errors into one readable error.
func translate(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := configKey(fe.Namespace())
		switch {
		case fe.Tag() == "required":
			msgs = append(msgs, field+" is required")
		case fe.Tag() == "sqlident":
			msgs = append(msgs, fmt.Sprintf("%s %q is not a valid table name", field, fe.Value()))
		case messageWithParam[fe.Tag()] != "":
			msgs = append(msgs, field+" "+fmt.Sprintf(messageWithParam[fe.Tag()], fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", field, fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

// configKey turns a validator namespace like Config.thresholds.anomaly_goal
// into the config key thresholds.anomaly_goal.
func configKey(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
