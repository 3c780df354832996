package commands

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var alphaDash = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateArguments checks positional args against params.
//
// Arguments map onto parameters by position. Rules are pipe-separated like
// "required|integer|min:1"; evaluation of a parameter stops at its first
// failing rule. A command without parameters rejects any argument.
//
//	params := []commands.Parameter{{Name: "platform", Rules: "required|in:android,ios"}}
//	err := commands.ValidateArguments(params, []string{"windows"})
//	// The selected platform is invalid.
func ValidateArguments(params []Parameter, args []string) error {
	errs := &ArgumentError{}
	if len(params) == 0 {
		if len(args) > 0 {
			errs.add("arguments", "This command doesn't accept parameters.")
			return errs
		}
		return nil
	}

	for i, p := range params {
		value := ""
		if i < len(args) {
			value = args[i]
		}
		for _, rule := range splitRules(p.Rules) {
			name, param, _ := strings.Cut(rule, ":")
			if !applyRule(errs, p.Name, value, name, param) {
				break
			}
		}
	}

	if len(errs.Bag) > 0 {
		return errs
	}
	return nil
}

// applyRule returns false when evaluation of the parameter should stop.
func applyRule(errs *ArgumentError, field, value, rule, param string) bool {
	switch rule {
	case "required":
		if strings.TrimSpace(value) == "" {
			errs.add(field, fmt.Sprintf("The %s argument is required.", field))
			return false
		}

	case "sometimes":
		if value == "" {
			return false
		}

	case "numeric":
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			errs.add(field, fmt.Sprintf("The %s must be a number.", field))
			return false
		}

	case "integer":
		if _, err := strconv.Atoi(value); err != nil {
			errs.add(field, fmt.Sprintf("The %s must be an integer.", field))
			return false
		}

	case "min":
		n, _ := strconv.Atoi(param)
		if utf8.RuneCountInString(value) < n {
			errs.add(field, fmt.Sprintf("The %s must be at least %d characters.", field, n))
			return false
		}

	case "max":
		n, _ := strconv.Atoi(param)
		if utf8.RuneCountInString(value) > n {
			errs.add(field, fmt.Sprintf("The %s may not be greater than %d characters.", field, n))
			return false
		}

	case "in":
		if !contains(strings.Split(param, ","), value) {
			errs.add(field, fmt.Sprintf("The selected %s is invalid.", field))
			return false
		}

	case "not_in":
		if contains(strings.Split(param, ","), value) {
			errs.add(field, fmt.Sprintf("The selected %s is invalid.", field))
			return false
		}

	case "alpha_dash":
		if !alphaDash.MatchString(value) {
			errs.add(field, fmt.Sprintf("The %s may only contain letters, numbers, dashes and underscores.", field))
			return false
		}

	case "regex":
		re, err := regexp.Compile(param)
		if err != nil || !re.MatchString(value) {
			errs.add(field, fmt.Sprintf("The %s format is invalid.", field))
			return false
		}
	}

	return true
}

func splitRules(rules string) []string {
	var out []string
	for _, r := range strings.Split(rules, "|") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if strings.TrimSpace(item) == value {
			return true
		}
	}
	return false
}
