package handlers

import (
	"fmt"
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/riyagarg17/CS520-Team5/internal/apperrors"
	"github.com/riyagarg17/CS520-Team5/internal/models"
	"github.com/riyagarg17/CS520-Team5/internal/services"
	"github.com/riyagarg17/CS520-Team5/internal/utils"
)

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=patient doctor"`
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginReq
	if err := c.BodyParser(&req); err != nil {
		return h.respondError(c, fmt.Errorf("%w: invalid body", apperrors.ErrValidation))
	}
	if err := utils.ValidateStruct(req); err != nil {
		return h.respondError(c, fmt.Errorf("%w: %v", apperrors.ErrValidation, err))
	}
	role, _ := models.ParseRole(req.Role)

	res, err := h.auth.Login(c.Context(), req.Email, req.Password, role)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(res)
}

type verifyMFAReq struct {
	Email        string `json:"email" validate:"required,email"`
	Code         string `json:"code" validate:"required,len=6"`
	PendingToken string `json:"pendingToken" validate:"required"`
}

func (h *Handler) VerifyMFA(c *fiber.Ctx) error {
	var req verifyMFAReq
	if err := c.BodyParser(&req); err != nil {
		return h.respondError(c, fmt.Errorf("%w: invalid body", apperrors.ErrValidation))
	}
	if err := utils.ValidateStruct(req); err != nil {
		return h.respondError(c, fmt.Errorf("%w: %v", apperrors.ErrValidation, err))
	}

	res, err := h.auth.VerifySecondFactor(c.Context(), req.Email, req.Code, req.PendingToken)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(res)
}

type resendCodeReq struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *Handler) ResendCode(c *fiber.Ctx) error {
	var req resendCodeReq
	if err := c.BodyParser(&req); err != nil {
		return h.respondError(c, fmt.Errorf("%w: invalid body", apperrors.ErrValidation))
	}
	if err := utils.ValidateStruct(req); err != nil {
		return h.respondError(c, fmt.Errorf("%w: %v", apperrors.ErrValidation, err))
	}
	if err := h.auth.ResendCode(c.Context(), req.Email); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "verification code sent"})
}

type registerPatientReq struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	DOB      string `json:"dob" validate:"required"`
	Gender   string `json:"gender" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
	Pincode  int    `json:"pincode" validate:"required"`
}

func (h *Handler) RegisterPatient(c *fiber.Ctx) error {
	var req registerPatientReq
	if err := c.BodyParser(&req); err != nil {
		return h.respondError(c, fmt.Errorf("%w: invalid body", apperrors.ErrValidation))
	}
	if err := utils.ValidateStruct(req); err != nil {
		return h.respondError(c, fmt.Errorf("%w: %v", apperrors.ErrValidation, err))
	}

	p, err := h.profiles.RegisterPatient(c.Context(), services.RegisterPatientInput{
		Email:    req.Email,
		Name:     req.Name,
		DOB:      req.DOB,
		Gender:   req.Gender,
		Password: req.Password,
		Pincode:  req.Pincode,
	})
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Patient registered successfully", "body": p})
}

// RegisterDoctor takes multipart form data; the license artifact travels in
// the "medicalCertificate" file field.
func (h *Handler) RegisterDoctor(c *fiber.Ctx) error {
	pincode, _ := strconv.Atoi(c.FormValue("pincode"))
	experience, _ := strconv.Atoi(c.FormValue("experience"))
	req := services.RegisterDoctorInput{
		Email:      c.FormValue("email"),
		Name:       c.FormValue("name"),
		DOB:        c.FormValue("dob"),
		Gender:     c.FormValue("gender"),
		Password:   c.FormValue("password"),
		Pincode:    pincode,
		Experience: experience,
	}
	if req.Email == "" || req.Name == "" || req.Password == "" {
		return h.respondError(c, fmt.Errorf("%w: email, name and password are required", apperrors.ErrValidation))
	}

	fh, err := c.FormFile("medicalCertificate")
	if err != nil {
		return h.respondError(c, fmt.Errorf("%w: medical license is required", apperrors.ErrValidation))
	}
	f, err := fh.Open()
	if err != nil {
		return h.respondError(c, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return h.respondError(c, err)
	}
	req.License = data
	req.LicenseCT = fh.Header.Get("Content-Type")

	d, err := h.profiles.RegisterDoctor(c.Context(), req)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Doctor registered successfully", "body": d})
}
