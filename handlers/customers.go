package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mkoskinen/laskutus/models"
)

const customerSelectQuery = `SELECT id, name, email, phone, vat_id, street, postal_code, city,
	country_code, e_invoice_address, created_at, updated_at FROM customers`

func scanCustomer(scanner interface{ Scan(...any) error }) (models.Customer, error) {
	var c models.Customer
	err := scanner.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.VATID, &c.Street, &c.PostalCode,
		&c.City, &c.CountryCode, &c.EInvoiceAddress, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func getCustomerByID(id int) (models.Customer, error) {
	return scanCustomer(DB.QueryRow(customerSelectQuery+" WHERE id = ?", id))
}

// ListCustomers lists all customers
// @Summary      List customers
// @Tags         customers
// @Produce      json
// @Param        search  query     string  false  "Search by name, email or VAT id"
// @Success      200     {object}  Response{data=[]models.Customer}
// @Router       /customers [get]
// @Security     BasicAuth
func ListCustomers(w http.ResponseWriter, r *http.Request) {
	query := customerSelectQuery
	var args []any
	if search := r.URL.Query().Get("search"); search != "" {
		query += " WHERE name LIKE ? OR email LIKE ? OR vat_id LIKE ?"
		s := "%" + search + "%"
		args = append(args, s, s, s)
	}
	query += " ORDER BY name"

	rows, err := DB.Query(query, args...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	customers := []models.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		customers = append(customers, c)
	}
	writeJSON(w, http.StatusOK, customers)
}

// GetCustomer retrieves a single customer by ID
// @Summary      Get customer
// @Tags         customers
// @Produce      json
// @Param        id   path      int  true  "Customer ID"
// @Success      200  {object}  Response{data=models.Customer}
// @Failure      404  {object}  Response{error=string}
// @Router       /customers/{id} [get]
// @Security     BasicAuth
func GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	c, err := getCustomerByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "customer not found")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// CreateCustomer creates a new customer
// @Summary      Create customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        customer  body      models.CustomerInput  true  "Customer contents"
// @Success      201       {object}  Response{data=models.Customer}
// @Failure      400       {object}  Response{error=string}
// @Router       /customers [post]
// @Security     BasicAuth
func CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var input models.CustomerInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	var id int
	err := DB.QueryRow(`INSERT INTO customers (name, email, phone, vat_id, street, postal_code, city, country_code, e_invoice_address)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		input.Name, input.Email, input.Phone, input.VATID, input.Street, input.PostalCode,
		input.City, strings.ToUpper(input.CountryCode), input.EInvoiceAddress).Scan(&id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	c, err := getCustomerByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to re-fetch created customer: "+err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// UpdateCustomer updates an existing customer
// @Summary      Update customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        id        path      int                   true  "Customer ID"
// @Param        customer  body      models.CustomerInput  true  "Updated customer contents"
// @Success      200       {object}  Response{data=models.Customer}
// @Failure      404       {object}  Response{error=string}
// @Router       /customers/{id} [put]
// @Security     BasicAuth
func UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	var input models.CustomerInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	res, err := DB.Exec(`UPDATE customers SET name = ?, email = ?, phone = ?, vat_id = ?, street = ?,
		postal_code = ?, city = ?, country_code = ?, e_invoice_address = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		input.Name, input.Email, input.Phone, input.VATID, input.Street, input.PostalCode,
		input.City, strings.ToUpper(input.CountryCode), input.EInvoiceAddress, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "customer not found")
		return
	}
	c, err := getCustomerByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to re-fetch updated customer: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// DeleteCustomer deletes a customer
// @Summary      Delete customer
// @Tags         customers
// @Produce      json
// @Param        id   path      int  true  "Customer ID"
// @Success      200  {object}  Response{data=map[string]string}
// @Failure      404  {object}  Response{error=string}
// @Router       /customers/{id} [delete]
// @Security     BasicAuth
func DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	res, err := DB.Exec("DELETE FROM customers WHERE id = ?", id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "customer not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}
