package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mkoskinen/laskutus/models"
)

const orderSelectQuery = `SELECT o.id, o.customer_id, o.order_number, o.status, o.order_date, o.notes,
	o.created_at, o.updated_at, c.name
	FROM orders o
	JOIN customers c ON o.customer_id = c.id`

func scanOrder(scanner interface{ Scan(...any) error }) (models.Order, error) {
	var o models.Order
	err := scanner.Scan(&o.ID, &o.CustomerID, &o.OrderNumber, &o.Status, &o.OrderDate, &o.Notes,
		&o.CreatedAt, &o.UpdatedAt, &o.CustomerName)
	return o, err
}

func getOrderByID(id int) (models.Order, error) {
	o, err := scanOrder(DB.QueryRow(orderSelectQuery+" WHERE o.id = ?", id))
	if err != nil {
		return o, err
	}

	rows, err := DB.Query(`SELECT id, order_id, item_id, description, quantity, unit_price,
		discount_percent, discount_amount, vat_rate FROM order_lines WHERE order_id = ? ORDER BY id`, id)
	if err != nil {
		return o, err
	}
	defer rows.Close()
	for rows.Next() {
		var l models.OrderLine
		var discPct, discAmt, vatRate sql.NullString
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ItemID, &l.Description, &l.Quantity, &l.UnitPrice,
			&discPct, &discAmt, &vatRate); err != nil {
			return o, err
		}
		if l.DiscountPercent, err = nullDecimalPtr(discPct); err != nil {
			return o, err
		}
		if l.DiscountAmount, err = nullMoneyPtr(discAmt); err != nil {
			return o, err
		}
		if l.VATRate, err = nullDecimalPtr(vatRate); err != nil {
			return o, err
		}
		o.Lines = append(o.Lines, l)
	}
	return o, rows.Err()
}

// ListOrders lists all orders
// @Summary      List orders
// @Tags         orders
// @Produce      json
// @Param        status       query     string  false  "Filter by status"
// @Param        customer_id  query     int     false  "Filter by customer"
// @Success      200          {object}  Response{data=[]models.Order}
// @Router       /orders [get]
// @Security     BasicAuth
func ListOrders(w http.ResponseWriter, r *http.Request) {
	query := orderSelectQuery
	var conditions []string
	var args []any

	if s := r.URL.Query().Get("status"); s != "" {
		conditions = append(conditions, "o.status = ?")
		args = append(args, s)
	}
	if cid := r.URL.Query().Get("customer_id"); cid != "" {
		conditions = append(conditions, "o.customer_id = ?")
		args = append(args, cid)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY o.created_at DESC, o.id DESC"

	rows, err := DB.Query(query, args...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		orders = append(orders, o)
	}
	writeJSON(w, http.StatusOK, orders)
}

// GetOrder retrieves a single order with its lines
// @Summary      Get order
// @Tags         orders
// @Produce      json
// @Param        id   path      int  true  "Order ID"
// @Success      200  {object}  Response{data=models.Order}
// @Failure      404  {object}  Response{error=string}
// @Router       /orders/{id} [get]
// @Security     BasicAuth
func GetOrder(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	o, err := getOrderByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "order not found")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// CreateOrder creates a new order with lines
// @Summary      Create order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        order  body      models.OrderInput  true  "Order contents"
// @Success      201    {object}  Response{data=models.Order}
// @Failure      400    {object}  Response{error=string}
// @Router       /orders [post]
// @Security     BasicAuth
func CreateOrder(w http.ResponseWriter, r *http.Request) {
	var input models.OrderInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	tx, err := DB.Begin()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRow(`SELECT 1 FROM customers WHERE id = ?`, input.CustomerID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("customer not found: id %d", input.CustomerID))
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	var id int
	if err := tx.QueryRow(`INSERT INTO orders (customer_id, order_date, notes) VALUES (?, ?, ?) RETURNING id`,
		input.CustomerID, input.OrderDate, input.Notes).Scan(&id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if _, err := tx.Exec(`UPDATE orders SET order_number = 'ORD-' || id WHERE id = ?`, id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	for i := range input.Lines {
		l := &input.Lines[i]
		description := ""
		if l.Description != nil {
			description = *l.Description
		}
		var unitPrice string
		if l.UnitPrice != nil {
			unitPrice = l.UnitPrice.String()
		}

		// Fill description and price from the catalog item; the VAT rate
		// deliberately stays NULL when not given, so the fallback chain
		// runs at invoicing time against current item data.
		if l.ItemID != nil {
			var name, price string
			err := tx.QueryRow(`SELECT name, unit_price FROM catalog_items WHERE id = ?`, *l.ItemID).Scan(&name, &price)
			if errors.Is(err, sql.ErrNoRows) {
				writeError(w, http.StatusNotFound, fmt.Sprintf("catalog item not found: id %d", *l.ItemID))
				return
			}
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			if description == "" {
				description = name
			}
			if unitPrice == "" {
				unitPrice = price
			}
		}

		var vatRate any
		if l.VATRate != nil {
			vatRate = l.VATRate.String()
		}
		var discPct, discAmt any
		if l.DiscountPercent != nil {
			discPct = l.DiscountPercent.String()
		}
		if l.DiscountAmount != nil {
			discAmt = l.DiscountAmount.String()
		}

		if _, err := tx.Exec(`INSERT INTO order_lines (order_id, item_id, description, quantity, unit_price,
			discount_percent, discount_amount, vat_rate) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, l.ItemID, description, l.Quantity.String(), unitPrice, discPct, discAmt, vatRate); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	if err := tx.Commit(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	o, err := getOrderByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to re-fetch created order: "+err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

// InvoiceOrder turns an open order into an invoice
// @Summary      Invoice order
// @Description  Copy the order's lines into a new draft invoice and mark the order invoiced, atomically.
// @Tags         orders
// @Produce      json
// @Param        id   path      int  true  "Order ID"
// @Success      201  {object}  Response{data=models.Invoice}
// @Failure      404  {object}  Response{error=string}
// @Failure      409  {object}  Response{error=string}
// @Router       /orders/{id}/invoice [post]
// @Security     BasicAuth
func InvoiceOrder(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	inv, err := Engine.CreateFromOrder(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}
