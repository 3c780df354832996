// Package http provides the request and response helpers used by the
// introspection API.
//
//	req := gohttp.NewRequest(r)
//	res := gohttp.NewResponse(w)
//
//	name := req.RouteParam("name")
//	args := req.QueryAll("arg")
//
//	res.Success(description)           // 200 {"data": ...}
//	res.NotFound()                      // 404 {"message": "Not found."}
//	res.ValidationError(msg, bag)       // 422 {"message": ..., "errors": {...}}
package http
