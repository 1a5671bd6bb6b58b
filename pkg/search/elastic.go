package search

import (
	"context"
	"log"

	"github.com/olivere/elastic/v7"
)

const productIndex = "products"

// ProductDoc 写入索引的商品文档
type ProductDoc struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Price       int64  `json:"price"`
}

// Client Elasticsearch 商品搜索客户端
type Client struct {
	es *elastic.Client
}

func NewClient(url string) (*Client, error) {
	es, err := elastic.NewClient(
		elastic.SetURL(url),
		elastic.SetSniff(false), // Docker 单节点环境下必须关掉 sniff
	)
	if err != nil {
		return nil, err
	}

	log.Println("Elasticsearch connected successfully")
	return &Client{es: es}, nil
}

// IndexProduct 写入/覆盖一条商品文档
func (c *Client) IndexProduct(ctx context.Context, doc ProductDoc) error {
	_, err := c.es.Index().
		Index(productIndex).
		Id(doc.ID).
		BodyJson(doc).
		Do(ctx)
	return err
}

// DeleteProduct 删除商品文档（商品下架时调用）
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	_, err := c.es.Delete().
		Index(productIndex).
		Id(id).
		Do(ctx)
	if elastic.IsNotFound(err) {
		return nil
	}
	return err
}

// Search 按关键词检索，返回按相关度排序的商品 ID 列表
func (c *Client) Search(ctx context.Context, query string) ([]string, error) {
	q := elastic.NewMultiMatchQuery(query, "name", "description", "category")

	res, err := c.es.Search().
		Index(productIndex).
		Query(q).
		Size(50).
		Do(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		ids = append(ids, hit.Id)
	}
	return ids, nil
}
