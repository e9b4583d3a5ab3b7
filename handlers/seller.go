package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mkoskinen/laskutus/models"
)

func getSellerProfile() (models.SellerProfile, error) {
	var s models.SellerProfile
	err := DB.QueryRow(`SELECT id, name, vat_id, iban, bic, street, postal_code, city, country_code,
		phone, email, www, updated_at FROM seller_profile WHERE id = 1`).
		Scan(&s.ID, &s.Name, &s.VATID, &s.IBAN, &s.BIC, &s.Street, &s.PostalCode, &s.City,
			&s.CountryCode, &s.Phone, &s.Email, &s.WWW, &s.UpdatedAt)
	return s, err
}

// GetSeller retrieves the seller profile
// @Summary      Get seller profile
// @Tags         seller
// @Produce      json
// @Success      200  {object}  Response{data=models.SellerProfile}
// @Router       /seller [get]
// @Security     BasicAuth
func GetSeller(w http.ResponseWriter, r *http.Request) {
	s, err := getSellerProfile()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// UpdateSeller updates the seller profile
// @Summary      Update seller profile
// @Description  VAT id, IBAN and BIC may be left empty here, but Finvoice export requires all three.
// @Tags         seller
// @Accept       json
// @Produce      json
// @Param        seller  body      models.SellerProfileInput  true  "Seller profile contents"
// @Success      200     {object}  Response{data=models.SellerProfile}
// @Failure      400     {object}  Response{error=string}
// @Router       /seller [put]
// @Security     BasicAuth
func UpdateSeller(w http.ResponseWriter, r *http.Request) {
	var input models.SellerProfileInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	_, err := DB.Exec(`UPDATE seller_profile SET name = ?, vat_id = ?, iban = ?, bic = ?, street = ?,
		postal_code = ?, city = ?, country_code = ?, phone = ?, email = ?, www = ?,
		updated_at = CURRENT_TIMESTAMP WHERE id = 1`,
		input.Name, input.VATID, input.IBAN, input.BIC, input.Street, input.PostalCode,
		input.City, strings.ToUpper(input.CountryCode), input.Phone, input.Email, input.WWW)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s, err := getSellerProfile()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to re-fetch seller profile: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s)
}
