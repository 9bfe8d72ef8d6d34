package handlers

import (
	"net/http"

	"finance/internal/middleware"
	"finance/internal/websocket"
)

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	portfolio, err := h.trade.Portfolio(r.Context(), currentUser(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.views.render(w, http.StatusOK, "index", pageData{
		LoggedIn: true,
		Flash:    middleware.PopFlash(w, r),
		Data:     portfolio,
	})
}

func (h *Handler) QuoteForm(w http.ResponseWriter, r *http.Request) {
	h.views.render(w, http.StatusOK, "quote", pageData{LoggedIn: true})
}

func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	q, err := h.trade.Quote(r.Context(), r.PostFormValue("symbol"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.views.render(w, http.StatusOK, "quoted", pageData{LoggedIn: true, Data: q})
}

func (h *Handler) BuyForm(w http.ResponseWriter, r *http.Request) {
	h.views.render(w, http.StatusOK, "buy", pageData{LoggedIn: true})
}

func (h *Handler) Buy(w http.ResponseWriter, r *http.Request) {
	_, err := h.trade.Buy(r.Context(), currentUser(r), r.PostFormValue("symbol"), r.PostFormValue("shares"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	middleware.SetFlash(w, "Bought!")
	redirectHome(w, r)
}

func (h *Handler) SellForm(w http.ResponseWriter, r *http.Request) {
	symbols, err := h.trade.HeldSymbols(r.Context(), currentUser(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.views.render(w, http.StatusOK, "sell", pageData{LoggedIn: true, Data: symbols})
}

func (h *Handler) Sell(w http.ResponseWriter, r *http.Request) {
	_, err := h.trade.Sell(r.Context(), currentUser(r), r.PostFormValue("symbol"), r.PostFormValue("shares"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	middleware.SetFlash(w, "Sold!")
	redirectHome(w, r)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	orders, err := h.trade.History(r.Context(), currentUser(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.views.render(w, http.StatusOK, "history", pageData{LoggedIn: true, Data: orders})
}

func (h *Handler) WSPortfolio(w http.ResponseWriter, r *http.Request) {
	websocket.ServeWS(w, r, h.hub, currentUser(r))
}
