// Package http holds the request and response helpers shared by the
// explorer handlers.
//
// # Request
//
//	req := gohttp.NewRequest(r)
//	profiles := req.QueryList("profiles") // ?profiles=dev,prod or ?profiles=dev&profiles=prod
//	abstract := req.RouteParam("abstract")
//
// # Response
//
//	res := gohttp.NewResponse(w)
//	res.Success(v)                   // 200 {"data": v}
//	res.ValidationError(v.Errors())  // 422 {"errors": {...}}
//	res.AppError(err)                // status from the error category, {"code", "message"}
//
// StatusFor maps error categories: ANALYSIS and DEFINITION → 422,
// RESOLUTION → 409, CACHE → 503, anything else → 500.
package http
