package main

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	cartgrpc "github.com/dwikikusuma/storefront/internal/cart/grpc"
	cgrpc "github.com/dwikikusuma/storefront/internal/catalog/grpc"
	checkoutgrpc "github.com/dwikikusuma/storefront/internal/checkout/grpc"
	identitygrpc "github.com/dwikikusuma/storefront/internal/identity/grpc"
	inquirygrpc "github.com/dwikikusuma/storefront/internal/inquiry/grpc"
	ordergrpc "github.com/dwikikusuma/storefront/internal/order/grpc"
	shopgrpc "github.com/dwikikusuma/storefront/internal/shop/grpc"
	"github.com/dwikikusuma/storefront/pkg/rpc"
)

const maxPhotoUpload = 10 << 20

type ctxKey struct{}

type gateway struct {
	catalog  *cgrpc.Client
	cart     *cartgrpc.Client
	checkout *checkoutgrpc.Client
	orders   *ordergrpc.Client
	shop     *shopgrpc.Client
	identity *identitygrpc.Client
	inquiry  *inquirygrpc.Client
}

func newGateway(conn rpc.Invoker) *gateway {
	return &gateway{
		catalog:  cgrpc.NewClient(conn),
		cart:     cartgrpc.NewClient(conn),
		checkout: checkoutgrpc.NewClient(conn),
		orders:   ordergrpc.NewClient(conn),
		shop:     shopgrpc.NewClient(conn),
		identity: identitygrpc.NewClient(conn),
		inquiry:  inquirygrpc.NewClient(conn),
	}
}

func (g *gateway) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }).Methods("GET")
	r.HandleFunc("/readyz", g.ready).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	// public
	api.HandleFunc("/auth/signin", g.signIn).Methods("POST")
	api.HandleFunc("/auth/signout", g.signOut).Methods("POST")
	api.HandleFunc("/menu", g.listMenu).Methods("GET")
	api.HandleFunc("/menu/categories", g.listCategories).Methods("GET")
	api.HandleFunc("/menu/{id}", g.getMenuItem).Methods("GET")
	api.HandleFunc("/shop", g.getShop).Methods("GET")
	api.HandleFunc("/inquiries", g.submitInquiry).Methods("POST")

	// signed-in customer
	me := api.NewRoute().Subrouter()
	me.Use(g.requireUser)
	me.HandleFunc("/me", g.me).Methods("GET")
	me.HandleFunc("/cart", g.getCart).Methods("GET")
	me.HandleFunc("/cart", g.clearCart).Methods("DELETE")
	me.HandleFunc("/cart/items", g.addCartItem).Methods("POST")
	me.HandleFunc("/cart/items/{id}", g.setCartItem).Methods("PUT")
	me.HandleFunc("/cart/items/{id}", g.removeCartItem).Methods("DELETE")
	me.HandleFunc("/checkout/quote", g.quote).Methods("GET")
	me.HandleFunc("/checkout", g.placeOrder).Methods("POST")
	me.HandleFunc("/orders", g.myOrders).Methods("GET")
	me.HandleFunc("/orders/{id}", g.myOrder).Methods("GET")
	me.HandleFunc("/orders/{id}/receipt", g.myReceipt).Methods("GET")

	// admin
	admin := api.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/menu", g.createMenuItem).Methods("POST")
	admin.HandleFunc("/menu/{id}", g.updateMenuItem).Methods("PUT")
	admin.HandleFunc("/menu/{id}", g.deleteMenuItem).Methods("DELETE")
	admin.HandleFunc("/menu/{id}/photo", g.uploadPhoto).Methods("POST")
	admin.HandleFunc("/shop/open", g.setOpen).Methods("PUT")
	admin.HandleFunc("/shop/location", g.setLocation).Methods("PUT")
	admin.HandleFunc("/shop/location/city", g.setLocationByCity).Methods("PUT")
	admin.HandleFunc("/shop/cities", g.searchCity).Methods("GET")
	admin.HandleFunc("/shop/cities/detect", g.detectCity).Methods("GET")
	admin.HandleFunc("/shop/discount", g.setDiscount).Methods("PUT")
	admin.HandleFunc("/shop/discounts/{category}", g.setCategoryDiscount).Methods("PUT")
	admin.HandleFunc("/shop/discounts/{category}", g.removeCategoryDiscount).Methods("DELETE")
	admin.HandleFunc("/shop/min-order", g.setMinOrder).Methods("PUT")
	admin.HandleFunc("/orders", g.ordersByDay).Methods("GET")
	admin.HandleFunc("/orders/export", g.exportOrders).Methods("GET")
	admin.HandleFunc("/orders/{id}/accept", g.acceptOrder).Methods("POST")
	admin.HandleFunc("/orders/{id}/reject", g.rejectOrder).Methods("POST")
	admin.HandleFunc("/inquiries", g.listInquiries).Methods("GET")

	return r
}

func (g *gateway) ready(w http.ResponseWriter, r *http.Request) {
	if _, err := g.shop.GetSettings(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// requireUser resolves the bearer token into the signed-in user.
func (g *gateway) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: errorDetail{Code: "UNAUTHENTICATED", Message: "must sign in"}})
			return
		}
		user, err := g.identity.Resolve(r.Context(), token)
		if err != nil {
			writeError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, user)))
	})
}

func userFrom(ctx context.Context) *identitygrpc.User {
	u, _ := ctx.Value(ctxKey{}).(*identitygrpc.User)
	return u
}

// respond adapts a client call's (reply, error) pair into a 200 JSON reply
// or a mapped error: respond(w)(client.Method(ctx, req)).
func respond(w http.ResponseWriter) func(any, error) {
	return func(v any, err error) {
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

// identity

func (g *gateway) signIn(w http.ResponseWriter, r *http.Request) {
	var req identitygrpc.SignInRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	respond(w)(g.identity.SignIn(r.Context(), &req))
}

func (g *gateway) signOut(w http.ResponseWriter, r *http.Request) {
	token, _ := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if err := g.identity.SignOut(r.Context(), token); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (g *gateway) me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userFrom(r.Context()))
}

// menu

func (g *gateway) listMenu(w http.ResponseWriter, r *http.Request) {
	respond(w)(g.catalog.ListItems(r.Context(), &cgrpc.ListItemsRequest{Category: r.URL.Query().Get("category")}))
}

func (g *gateway) listCategories(w http.ResponseWriter, r *http.Request) {
	respond(w)(g.catalog.ListCategories(r.Context()))
}

func (g *gateway) getMenuItem(w http.ResponseWriter, r *http.Request) {
	respond(w)(g.catalog.GetItem(r.Context(), &cgrpc.ItemID{ID: mux.Vars(r)["id"]}))
}

func (g *gateway) createMenuItem(w http.ResponseWriter, r *http.Request) {
	var item cgrpc.ItemFields
	if err := decodeJSON(w, r, &item); err != nil {
		writeError(w, err)
		return
	}
	respond(w)(g.catalog.CreateItem(r.Context(), &cgrpc.CreateItemRequest{Item: item}))
}

func (g *gateway) updateMenuItem(w http.ResponseWriter, r *http.Request) {
	var item cgrpc.ItemFields
	if err := decodeJSON(w, r, &item); err != nil {
		writeError(w, err)
		return
	}
	respond(w)(g.catalog.UpdateItem(r.Context(), &cgrpc.UpdateItemRequest{ID: mux.Vars(r)["id"], Item: item}))
}

func (g *gateway) deleteMenuItem(w http.ResponseWriter, r *http.Request) {
	if _, err := g.catalog.DeleteItem(r.Context(), &cgrpc.ItemID{ID: mux.Vars(r)["id"]}); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (g *gateway) uploadPhoto(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoUpload+1<<20)
	if err := r.ParseMultipartForm(maxPhotoUpload); err != nil {
		writeError(w, errBadRequest("expected multipart form with a file field"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, errBadRequest("file field is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, errBadRequest("could not read uploaded file"))
		return
	}
	respond(w)(g.catalog.AttachPhoto(r.Context(), &cgrpc.AttachPhotoRequest{
		ID:       mux.Vars(r)["id"],
		Filename: header.Filename,
		Data:     data,
	}))
}

// cart

func (g *gateway) getCart(w http.ResponseWriter, r *http.Request) {
	respond(w)(g.cart.GetCart(r.Context(), &cartgrpc.UserRequest{UserID: userFrom(r.Context()).ID}))
}

func (g *gateway) clearCart(w http.ResponseWriter, r *http.Request) {
	if _, err := g.cart.ClearCart(r.Context(), &cartgrpc.UserRequest{UserID: userFrom(r.Context()).ID}); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (g *gateway) addCartItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ItemID string `json:"item_id"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, err)
		return
	}
	respond(w)(g.cart.AddItem(r.Context(), &cartgrpc.ItemRequest{UserID: userFrom(r.Context()).ID, ItemID: body.ItemID}))
}

func (g *gateway) setCartItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, err)
		return
	}
	respond(w)(g.cart.SetItemQuantity(r.Context(), &cartgrpc.ItemRequest{
		UserID:   userFrom(r.Context()).ID,
		ItemID:   mux.Vars(r)["id"],
		Quantity: body.Quantity,
	}))
}

func (g *gateway) removeCartItem(w http.ResponseWriter, r *http.Request) {
	respond(w)(g.cart.RemoveItem(r.Context(), &cartgrpc.ItemRequest{UserID: userFrom(r.Context()).ID, ItemID: mux.Vars(r)["id"]}))
}

// checkout

func (g *gateway) quote(w http.ResponseWriter, r *http.Request) {
	respond(w)(g.checkout.Quote(r.Context(), &checkoutgrpc.QuoteRequest{UserID: userFrom(r.Context()).ID}))
}

func (g *gateway) placeOrder(w http.ResponseWriter, r *http.Request) {
	var body struct {
		BillingName   string   `json:"billing_name"`
		BillingMobile string   `json:"billing_mobile"`
		Address       string   `json:"address"`
		Lat           *float64 `json:"lat,omitempty"`
		Lng           *float64 `json:"lng,omitempty"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, err)
		return
	}
	user := userFrom(r.Context())
	resp, err := g.checkout.PlaceOrder(r.Context(), &checkoutgrpc.PlaceOrderRequest{
		UserID:        user.ID,
		CustomerName:  user.Name,
		CustomerEmail: user.Email,
		BillingName:   body.BillingName,
		BillingMobile: body.BillingMobile,
		Address:       body.Address,
		Lat:           body.Lat,
		Lng:           body.Lng,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if resp.Skipped {
		writeJSON(w, http.StatusAccepted, resp)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// orders

func (g *gateway) myOrders(w http.ResponseWriter, r *http.Request) {
	respond(w)(g.orders.ListUserOrders(r.Context(), &ordergrpc.UserOrdersRequest{
		UserID: userFrom(r.Context()).ID,
		Date:   r.URL.Query().Get("date"),
	}))
}

// ownOrder loads the order and hides orders of other users behind 404.
func (g *gateway) ownOrder(w http.ResponseWriter, r *http.Request) (*ordergrpc.Order, bool) {
	o, err := g.orders.GetOrder(r.Context(), &ordergrpc.OrderRequest{OrderID: mux.Vars(r)["id"]})
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	if o.UserID != userFrom(r.Context()).ID {
		writeJSON(w, http.StatusNotFound, errorBody{Error: errorDetail{Code: "NOT_FOUND", Message: "order not found"}})
		return nil, false
	}
	return o, true
}

func (g *gateway) myOrder(w http.ResponseWriter, r *http.Request) {
	if o, ok := g.ownOrder(w, r); ok {
		writeJSON(w, http.StatusOK, o)
	}
}

func (g *gateway) myReceipt(w http.ResponseWriter, r *http.Request) {
	o, ok := g.ownOrder(w, r)
	if !ok {
		return
	}
	rc, err := g.orders.GetReceipt(r.Context(), &ordergrpc.OrderRequest{OrderID: o.ID})
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, rc.Text)
}

func (g *gateway) ordersByDay(w http.ResponseWriter, r *http.Request) {
	respond(w)(g.orders.ListOrdersByDay(r.Context(), &ordergrpc.DayRequest{Date: r.URL.Query().Get("date")}))
}

func (g *gateway) exportOrders(w http.ResponseWriter, r *http.Request) {
	exp, err := g.orders.ExportOrders(r.Context(), &ordergrpc.DayRequest{Date: r.URL.Query().Get("date")})
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+exp.Filename+`"`)
	_, _ = io.WriteString(w, exp.CSV)
}

func (g *gateway) acceptOrder(w http.ResponseWriter, r *http.Request) {
	respond(w)(g.orders.AcceptOrder(r.Context(), &ordergrpc.OrderRequest{OrderID: mux.Vars(r)["id"]}))
}

func (g *gateway) rejectOrder(w http.ResponseWriter, r *http.Request) {
	respond(w)(g.orders.RejectOrder(r.Context(), &ordergrpc.OrderRequest{OrderID: mux.Vars(r)["id"]}))
}

// shop

func (g *gateway) getShop(w http.ResponseWriter, r *http.Request) {
	respond(w)(g.shop.GetSettings(r.Context()))
}

func (g *gateway) setOpen(w http.ResponseWriter, r *http.Request) {
	var req shopgrpc.SetOpenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	respond(w)(g.shop.SetOpen(r.Context(), &req))
}

func (g *gateway) setLocation(w http.ResponseWriter, r *http.Request) {
	var req shopgrpc.SetLocationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	respond(w)(g.shop.SetLocation(r.Context(), &req))
}

func (g *gateway) setLocationByCity(w http.ResponseWriter, r *http.Request) {
	var req shopgrpc.SetLocationByCityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	respond(w)(g.shop.SetLocationByCity(r.Context(), &req))
}

func (g *gateway) searchCity(w http.ResponseWriter, r *http.Request) {
	respond(w)(g.shop.SearchCity(r.Context(), &shopgrpc.SearchCityRequest{Query: r.URL.Query().Get("q")}))
}

func (g *gateway) detectCity(w http.ResponseWriter, r *http.Request) {
	lat, err1 := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lng, err2 := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if err1 != nil || err2 != nil {
		writeError(w, errBadRequest("lat and lng query parameters are required"))
		return
	}
	respond(w)(g.shop.DetectCity(r.Context(), &shopgrpc.DetectCityRequest{Lat: lat, Lng: lng}))
}

func (g *gateway) setDiscount(w http.ResponseWriter, r *http.Request) {
	var req shopgrpc.SetDiscountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	respond(w)(g.shop.SetDiscount(r.Context(), &req))
}

func (g *gateway) setCategoryDiscount(w http.ResponseWriter, r *http.Request) {
	var req shopgrpc.CategoryDiscountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	req.Category = mux.Vars(r)["category"]
	respond(w)(g.shop.SetCategoryDiscount(r.Context(), &req))
}

func (g *gateway) removeCategoryDiscount(w http.ResponseWriter, r *http.Request) {
	respond(w)(g.shop.RemoveCategoryDiscount(r.Context(), &shopgrpc.CategoryDiscountRequest{Category: mux.Vars(r)["category"]}))
}

func (g *gateway) setMinOrder(w http.ResponseWriter, r *http.Request) {
	var req shopgrpc.MinOrderValueRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	respond(w)(g.shop.SetMinOrderValue(r.Context(), &req))
}

// inquiries

func (g *gateway) submitInquiry(w http.ResponseWriter, r *http.Request) {
	var req inquirygrpc.SubmitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	inq, err := g.inquiry.Submit(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, inq)
}

func (g *gateway) listInquiries(w http.ResponseWriter, r *http.Request) {
	respond(w)(g.inquiry.List(r.Context(), r.URL.Query().Get("kind")))
}
