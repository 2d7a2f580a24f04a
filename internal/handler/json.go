package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/xenking/shop-api/internal/domain/cart"
	"github.com/xenking/shop-api/internal/domain/item"
	"github.com/xenking/shop-api/internal/domain/order"
	"github.com/xenking/shop-api/internal/domain/user"
)

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// badRequestError marks malformed client input such as invalid JSON.
type badRequestError struct {
	err error
}

func (e *badRequestError) Error() string { return e.err.Error() }

func (e *badRequestError) Unwrap() error { return e.err }

func badRequest(err error) error {
	return &badRequestError{err: err}
}

// writeJSON encodes a response body with jx and writes it with status.
func writeJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	encode(e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeError writes the {"code":N,"message":"..."} error body.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("code")
		e.Int(status)
		e.FieldStart("message")
		e.Str(message)
		e.ObjEnd()
	})
}

// handleError maps domain errors to NotFound and BadRequest responses.
// Everything else is logged and reported as a generic server error.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		badReq   *badRequestError
		quantity *cart.InvalidQuantityError
	)
	switch {
	case errors.Is(err, user.ErrNotFound), errors.Is(err, item.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case user.IsValidationError(err), errors.As(err, &quantity), errors.As(err, &badReq):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		zctx.From(r.Context()).Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// pathInt64 parses a numeric path variable.
func pathInt64(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, badRequest(errors.Errorf("invalid %s %q", name, raw))
	}
	return v, nil
}

// decodeBody decodes a JSON object body field by field.
func decodeBody(w http.ResponseWriter, r *http.Request, field func(d *jx.Decoder, key string) error) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	d := jx.Decode(body, 512)
	if err := d.Obj(field); err != nil {
		return badRequest(errors.Wrap(err, "decode request body"))
	}
	if err := d.Skip(); !errors.Is(err, io.EOF) {
		return badRequest(errors.New("unexpected data after request body"))
	}
	return nil
}

func encodeItem(e *jx.Encoder, it item.Item) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(it.ID)
	e.FieldStart("name")
	e.Str(it.Name)
	e.FieldStart("description")
	e.Str(it.Description)
	e.FieldStart("price")
	e.Float64(it.Price.InexactFloat64())
	e.ObjEnd()
}

func encodeItems(e *jx.Encoder, items []item.Item) {
	e.ArrStart()
	for _, it := range items {
		encodeItem(e, it)
	}
	e.ArrEnd()
}

// encodeUser never writes the password hash.
func encodeUser(e *jx.Encoder, u *user.User) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(u.ID)
	e.FieldStart("username")
	e.Str(u.Username)
	e.FieldStart("cartId")
	e.Int64(u.CartID)
	e.ObjEnd()
}

func encodeCart(e *jx.Encoder, c *cart.Cart) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(c.ID)
	e.FieldStart("userId")
	e.Int64(c.UserID)
	e.FieldStart("items")
	encodeItems(e, c.Items)
	e.FieldStart("total")
	e.Float64(c.Total().InexactFloat64())
	e.ObjEnd()
}

func encodeOrder(e *jx.Encoder, o *order.Order) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(o.ID)
	e.FieldStart("user")
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(o.UserID)
	e.FieldStart("username")
	e.Str(o.Username)
	e.ObjEnd()
	e.FieldStart("items")
	encodeItems(e, o.Items)
	e.FieldStart("total")
	e.Float64(o.Total.InexactFloat64())
	e.FieldStart("createdAt")
	e.Str(o.CreatedAt.UTC().Format(timeLayout))
	e.ObjEnd()
}
