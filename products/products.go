package products

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"kirana/db"
	"kirana/models"
	"kirana/rdx"
	"kirana/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const productCacheTTL = 2 * time.Minute

func productCacheKey(category string) string {
	if category == "" {
		return "products:all"
	}
	return "products:" + category
}

// invalidateProductCache drops the cached lists a catalog change can
// stale. Category lists not named here age out via the TTL.
func invalidateProductCache(categories ...string) {
	rdx.RdxDel(productCacheKey(""))
	for _, c := range categories {
		if c != "" {
			rdx.RdxDel(productCacheKey(c))
		}
	}
}

// GetProducts lists the catalog, optional ?category= filter. The list
// is cached in Redis briefly to keep storefront reloads off Mongo.
func GetProducts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cat := r.URL.Query().Get("category")
	cacheKey := productCacheKey(cat)
	if cached, err := rdx.RdxGet(cacheKey); err == nil && cached != "" {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(cached))
		return
	}

	filter := bson.M{}
	if cat != "" {
		filter["category"] = cat
	}

	cursor, err := db.ProductCollection.Find(ctx, filter)
	if err != nil {
		log.Println("GetProducts Find error:", err)
		http.Error(w, "Could not retrieve products", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	var list []models.Product
	if err := cursor.All(ctx, &list); err != nil {
		log.Println("GetProducts cursor.All error:", err)
		http.Error(w, "Error reading product data", http.StatusInternalServerError)
		return
	}
	if len(list) == 0 {
		list = []models.Product{}
	}

	if data, err := json.Marshal(list); err == nil {
		rdx.SetWithExpiry(cacheKey, string(data), productCacheTTL)
	}

	utils.RespondWithJSON(w, http.StatusOK, list)
}

// GetProduct returns a single catalog entry.
func GetProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var product models.Product
	err := db.ProductCollection.FindOne(ctx, bson.M{"productid": ps.ByName("id")}).Decode(&product)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		log.Println("GetProduct FindOne error:", err)
		http.Error(w, "Could not retrieve product", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, product)
}
