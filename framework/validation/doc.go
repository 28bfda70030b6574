// Package validation checks flat string maps against pipe-separated rules.
// Configuration and HTTP query parameters both go through it.
//
// # Basic Usage
//
//	v := validation.Make(map[string]string{
//	    "cache.driver": "redis",
//	    "cache.redis_addr": "localhost:6379",
//	}, validation.Rules{
//	    "cache.driver":     "required|in:none,file,redis,memory",
//	    "cache.redis_addr": "hostport",
//	})
//
//	if err := v.Err(); err != nil {
//	    // v.Errors().Bag: {"field": ["message"]}
//	}
//
// # Available Rules
//
//   - required           field must be present and non-empty
//   - integer            parseable as int
//   - between:lo,hi      integer in [lo, hi]
//   - in:a,b,c           value must be in the comma-separated list
//   - duration           time.ParseDuration, not negative
//   - hostport           host:port address
//   - names              comma-separated identifiers ([A-Za-z0-9][A-Za-z0-9_.-]*)
//   - distinct           comma-separated values without repeats
//
// Every rule except required is skipped for a blank value. Rules run in
// order and stop at the first failure for a field.
package validation
