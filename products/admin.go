package products

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"kirana/db"
	"kirana/models"
	"kirana/utils"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const productUploadDir = "static/productpic"

// saveProductImage stores the uploaded image plus a 300px thumbnail and
// returns their public paths.
func saveProductImage(file *multipart.FileHeader) (string, string, error) {
	src, err := file.Open()
	if err != nil {
		return "", "", fmt.Errorf("failed to open image file: %w", err)
	}
	defer src.Close()

	img, err := imaging.Decode(src)
	if err != nil {
		return "", "", fmt.Errorf("failed to decode image: %w", err)
	}

	uniqueID := uuid.NewString()
	originalPath := filepath.Join(productUploadDir, uniqueID+".jpg")
	thumbDir := filepath.Join(productUploadDir, "thumb")
	thumbnailPath := filepath.Join(thumbDir, uniqueID+".jpg")

	if err := utils.EnsureDir(productUploadDir); err != nil {
		return "", "", fmt.Errorf("failed to create upload directory: %w", err)
	}
	if err := utils.EnsureDir(thumbDir); err != nil {
		return "", "", fmt.Errorf("failed to create thumbnail directory: %w", err)
	}

	if err := imaging.Save(img, originalPath); err != nil {
		return "", "", fmt.Errorf("failed to save original image: %w", err)
	}

	thumbImg := imaging.Resize(img, 300, 0, imaging.Lanczos)
	if err := imaging.Save(thumbImg, thumbnailPath); err != nil {
		return "", "", fmt.Errorf("failed to save thumbnail: %w", err)
	}

	return "/" + originalPath, "/" + thumbnailPath, nil
}

func parseProductForm(r *http.Request) (models.Product, error) {
	price, err := strconv.ParseInt(r.FormValue("price"), 10, 64)
	if err != nil || price <= 0 {
		return models.Product{}, fmt.Errorf("invalid price")
	}
	stock, err := strconv.Atoi(r.FormValue("stock"))
	if err != nil || stock < 0 {
		return models.Product{}, fmt.Errorf("invalid stock")
	}
	p := models.Product{
		Name:     r.FormValue("name"),
		Category: r.FormValue("category"),
		Unit:     r.FormValue("unit"),
		Price:    price,
		Stock:    stock,
	}
	if p.Name == "" || p.Category == "" {
		return models.Product{}, fmt.Errorf("name and category are required")
	}
	return p, nil
}

// CreateProduct adds a catalog entry. The image is required.
func CreateProduct(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	product, err := parseProductForm(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	_, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "Image is required", http.StatusBadRequest)
		return
	}
	if !utils.ValidateImageFileType(w, header) {
		return
	}

	imagePath, thumbPath, err := saveProductImage(header)
	if err != nil {
		log.Println("CreateProduct image error:", err)
		http.Error(w, "Failed to store image", http.StatusInternalServerError)
		return
	}

	product.ProductID = "p" + utils.GenerateRandomString(10)
	product.ImagePath = imagePath
	product.ThumbPath = thumbPath
	product.CreatedAt = time.Now()
	product.UpdatedAt = time.Now()

	if _, err := db.ProductCollection.InsertOne(ctx, product); err != nil {
		log.Println("CreateProduct InsertOne error:", err)
		http.Error(w, "Failed to create product", http.StatusInternalServerError)
		return
	}

	invalidateProductCache(product.Category)

	utils.RespondWithJSON(w, http.StatusCreated, product)
}

// UpdateProduct overwrites the posted fields; a new image is optional.
func UpdateProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if name := r.FormValue("name"); name != "" {
		set["name"] = name
	}
	if category := r.FormValue("category"); category != "" {
		set["category"] = category
	}
	if unit := r.FormValue("unit"); unit != "" {
		set["unit"] = unit
	}
	if v := r.FormValue("price"); v != "" {
		price, err := strconv.ParseInt(v, 10, 64)
		if err != nil || price <= 0 {
			http.Error(w, "invalid price", http.StatusBadRequest)
			return
		}
		set["price"] = price
	}
	if v := r.FormValue("stock"); v != "" {
		stock, err := strconv.Atoi(v)
		if err != nil || stock < 0 {
			http.Error(w, "invalid stock", http.StatusBadRequest)
			return
		}
		set["stock"] = stock
	}

	if _, header, err := r.FormFile("image"); err == nil {
		if !utils.ValidateImageFileType(w, header) {
			return
		}
		imagePath, thumbPath, err := saveProductImage(header)
		if err != nil {
			log.Println("UpdateProduct image error:", err)
			http.Error(w, "Failed to store image", http.StatusInternalServerError)
			return
		}
		set["image"] = imagePath
		set["thumb"] = thumbPath
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Product
	err := db.ProductCollection.FindOneAndUpdate(ctx,
		bson.M{"productid": ps.ByName("id")},
		bson.M{"$set": set},
		opts,
	).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		log.Println("UpdateProduct update error:", err)
		http.Error(w, "Failed to update product", http.StatusInternalServerError)
		return
	}

	invalidateProductCache(updated.Category)

	utils.RespondWithJSON(w, http.StatusOK, updated)
}

// DeleteProduct removes a catalog entry. Existing orders keep their
// snapshots, so history is unaffected.
func DeleteProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := db.ProductCollection.DeleteOne(ctx, bson.M{"productid": ps.ByName("id")})
	if err != nil {
		log.Println("DeleteProduct DeleteOne error:", err)
		http.Error(w, "Failed to delete product", http.StatusInternalServerError)
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Product not found")
		return
	}

	invalidateProductCache()

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Product deleted successfully"})
}
