package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mkoskinen/laskutus/models"
)

const itemSelectQuery = `SELECT id, name, description, unit, unit_price, cost_price, default_vat_rate,
	created_at, updated_at FROM catalog_items`

func scanItem(scanner interface{ Scan(...any) error }) (models.CatalogItem, error) {
	var it models.CatalogItem
	err := scanner.Scan(&it.ID, &it.Name, &it.Description, &it.Unit, &it.UnitPrice, &it.CostPrice,
		&it.DefaultVATRate, &it.CreatedAt, &it.UpdatedAt)
	return it, err
}

func getItemByID(id int) (models.CatalogItem, error) {
	return scanItem(DB.QueryRow(itemSelectQuery+" WHERE id = ?", id))
}

// ListItems lists all catalog items
// @Summary      List catalog items
// @Tags         items
// @Produce      json
// @Param        search  query     string  false  "Search by name or description"
// @Success      200     {object}  Response{data=[]models.CatalogItem}
// @Router       /items [get]
// @Security     BasicAuth
func ListItems(w http.ResponseWriter, r *http.Request) {
	query := itemSelectQuery
	var args []any
	if search := r.URL.Query().Get("search"); search != "" {
		query += " WHERE name LIKE ? OR description LIKE ?"
		s := "%" + search + "%"
		args = append(args, s, s)
	}
	query += " ORDER BY name"

	rows, err := DB.Query(query, args...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	items := []models.CatalogItem{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		items = append(items, it)
	}
	writeJSON(w, http.StatusOK, items)
}

// GetItem retrieves a single catalog item by ID
// @Summary      Get catalog item
// @Tags         items
// @Produce      json
// @Param        id   path      int  true  "Item ID"
// @Success      200  {object}  Response{data=models.CatalogItem}
// @Failure      404  {object}  Response{error=string}
// @Router       /items/{id} [get]
// @Security     BasicAuth
func GetItem(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	it, err := getItemByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "item not found")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, it)
}

// CreateItem creates a new catalog item
// @Summary      Create catalog item
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        item  body      models.CatalogItemInput  true  "Item contents"
// @Success      201   {object}  Response{data=models.CatalogItem}
// @Failure      400   {object}  Response{error=string}
// @Router       /items [post]
// @Security     BasicAuth
func CreateItem(w http.ResponseWriter, r *http.Request) {
	var input models.CatalogItemInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	vatRate := Engine.DefaultVATRate().String()
	if input.DefaultVATRate != nil {
		vatRate = input.DefaultVATRate.String()
	}

	var id int
	err := DB.QueryRow(`INSERT INTO catalog_items (name, description, unit, unit_price, cost_price, default_vat_rate)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`,
		input.Name, input.Description, input.Unit, input.UnitPrice.String(), input.CostPrice.String(), vatRate).Scan(&id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	it, err := getItemByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to re-fetch created item: "+err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

// UpdateItem updates an existing catalog item
// @Summary      Update catalog item
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        id    path      int                      true  "Item ID"
// @Param        item  body      models.CatalogItemInput  true  "Updated item contents"
// @Success      200   {object}  Response{data=models.CatalogItem}
// @Failure      404   {object}  Response{error=string}
// @Router       /items/{id} [put]
// @Security     BasicAuth
func UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	var input models.CatalogItemInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	vatRate := Engine.DefaultVATRate().String()
	if input.DefaultVATRate != nil {
		vatRate = input.DefaultVATRate.String()
	}

	res, err := DB.Exec(`UPDATE catalog_items SET name = ?, description = ?, unit = ?, unit_price = ?,
		cost_price = ?, default_vat_rate = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		input.Name, input.Description, input.Unit, input.UnitPrice.String(), input.CostPrice.String(), vatRate, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	it, err := getItemByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to re-fetch updated item: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, it)
}

// DeleteItem deletes a catalog item
// @Summary      Delete catalog item
// @Tags         items
// @Produce      json
// @Param        id   path      int  true  "Item ID"
// @Success      200  {object}  Response{data=map[string]string}
// @Failure      404  {object}  Response{error=string}
// @Router       /items/{id} [delete]
// @Security     BasicAuth
func DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	res, err := DB.Exec("DELETE FROM catalog_items WHERE id = ?", id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}
