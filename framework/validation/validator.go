package validation

import (
	"fmt"
	"net"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ── Types ────────────────────────────────────────────────────────────────────

// Errors collects messages per field.
// JSON output: {"errors": {"field": ["msg1", "msg2"]}}
type Errors struct {
	Bag map[string][]string `json:"errors"`
}

func (e *Errors) add(field, msg string) {
	if e.Bag == nil {
		e.Bag = make(map[string][]string)
	}
	e.Bag[field] = append(e.Bag[field], msg)
}

// Has returns true if there are any errors.
func (e *Errors) Has() bool { return len(e.Bag) > 0 }

// First returns the first error for a field.
func (e *Errors) First(field string) string {
	if msgs, ok := e.Bag[field]; ok && len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Error joins every message, fields in lexical order.
func (e *Errors) Error() string {
	fields := make([]string, 0, len(e.Bag))
	for f := range e.Bag {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var msgs []string
	for _, f := range fields {
		msgs = append(msgs, e.Bag[f]...)
	}
	return strings.Join(msgs, " ")
}

// ── Validator ────────────────────────────────────────────────────────────────

// Rules is a map of field → pipe-separated rule string.
// e.g. Rules{"cache.driver": "required|in:none,file,redis,memory", "server.port": "integer|between:1,65535"}
type Rules map[string]string

// Validator validates a flat map of input values.
type Validator struct {
	data   map[string]string
	rules  Rules
	errors *Errors
	ran    bool
}

// Make creates a new Validator.
func Make(data map[string]string, rules Rules) *Validator {
	return &Validator{
		data:   data,
		rules:  rules,
		errors: &Errors{},
	}
}

// Fails runs validation and returns true if any rule fails.
func (v *Validator) Fails() bool {
	if !v.ran {
		v.validate()
		v.ran = true
	}
	return v.errors.Has()
}

// Passes runs validation and returns true if all rules pass.
func (v *Validator) Passes() bool { return !v.Fails() }

// Errors returns the validation error bag.
func (v *Validator) Errors() *Errors { return v.errors }

// Err returns the error bag when validation fails, nil otherwise.
func (v *Validator) Err() error {
	if v.Fails() {
		return v.errors
	}
	return nil
}

// ── Core validation loop ─────────────────────────────────────────────────────

func (v *Validator) validate() {
	for field, ruleStr := range v.rules {
		value := v.data[field]

		for _, rule := range strings.Split(ruleStr, "|") {
			rule = strings.TrimSpace(rule)
			if rule == "" {
				continue
			}
			// Optional fields skip every other rule when blank.
			if rule != "required" && strings.TrimSpace(value) == "" {
				break
			}

			name, param, _ := strings.Cut(rule, ":")
			if !v.applyRule(field, value, name, param) {
				break // first failure wins
			}
		}
	}
}

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// applyRule returns true if the rule passes.
func (v *Validator) applyRule(field, value, rule, param string) bool {
	switch rule {
	case "required":
		if strings.TrimSpace(value) == "" {
			v.errors.add(field, fmt.Sprintf("The %s field is required.", field))
			return false
		}

	case "integer":
		if _, err := strconv.Atoi(value); err != nil {
			v.errors.add(field, fmt.Sprintf("The %s must be an integer.", field))
			return false
		}

	case "between":
		lo, hi, ok := bounds(param)
		n, err := strconv.Atoi(value)
		if !ok || err != nil || n < lo || n > hi {
			v.errors.add(field, fmt.Sprintf("The %s must be between %s.", field, strings.ReplaceAll(param, ",", " and ")))
			return false
		}

	case "in":
		if !slices.Contains(splitList(param), value) {
			v.errors.add(field, fmt.Sprintf("The selected %s is invalid.", field))
			return false
		}

	case "duration":
		if d, err := time.ParseDuration(value); err != nil || d < 0 {
			v.errors.add(field, fmt.Sprintf("The %s must be a non-negative duration such as 10m.", field))
			return false
		}

	case "hostport":
		if _, _, err := net.SplitHostPort(value); err != nil {
			v.errors.add(field, fmt.Sprintf("The %s must be a host:port address.", field))
			return false
		}

	case "names":
		// comma-separated identifiers, e.g. profile lists
		for _, n := range splitList(value) {
			if !namePattern.MatchString(n) {
				v.errors.add(field, fmt.Sprintf("The %s contains an invalid name %q.", field, n))
				return false
			}
		}

	case "distinct":
		seen := make(map[string]bool)
		for _, n := range splitList(value) {
			if seen[n] {
				v.errors.add(field, fmt.Sprintf("The %s has a duplicate value %q.", field, n))
				return false
			}
			seen[n] = true
		}
	}

	return true
}

// ── helpers ──────────────────────────────────────────────────────────────────

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

func bounds(param string) (int, int, bool) {
	lo, hi, ok := strings.Cut(param, ",")
	if !ok {
		return 0, 0, false
	}
	l, err1 := strconv.Atoi(strings.TrimSpace(lo))
	h, err2 := strconv.Atoi(strings.TrimSpace(hi))
	return l, h, err1 == nil && err2 == nil
}
