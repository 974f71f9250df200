package graphql

// Operation documents sent to the backend. They mirror the backend schema,
// which the console treats as a fixed external contract.

const userFields = `
    id
    username
    role
    createdAt
    updatedAt
    lastLoginAt`

const testSuiteFields = `
  fragment TestSuiteFields on TestSuite {
    id
    name
    description
    status
    estimatedStartDate
    estimatedEndDate
    requireEffortComment
    progress
    createdAt
    updatedAt
  }`

const loginMutation = `
mutation Login($username: String!, $password: String!) {
  login(username: $username, password: $password) {
    token
    refreshToken
    user {` + userFields + `
    }
    expiresAt
  }
}`

const logoutMutation = `
mutation Logout($refreshToken: String!) {
  logout(refreshToken: $refreshToken)
}`

const meQuery = `
query Me {
  me {` + userFields + `
  }
}`

const testSuiteListQuery = `
query GetTestSuiteList($status: SuiteStatus, $page: Int, $pageSize: Int) {
  testSuites(status: $status, page: $page, pageSize: $pageSize) {
    edges {
      node {
        ...TestSuiteFields
      }
      cursor
    }
    pageInfo {
      hasNextPage
      hasPreviousPage
      startCursor
      endCursor
    }
    totalCount
  }
}
` + testSuiteFields

const testSuiteDetailQuery = `
query GetTestSuiteDetail($id: ID!) {
  testSuite(id: $id) {
    ...TestSuiteFields
    groups {
      id
      name
      description
      displayOrder
      status
      createdAt
      updatedAt
    }
  }
}
` + testSuiteFields

const createTestSuiteMutation = `
mutation CreateTestSuite($input: CreateTestSuiteInput!) {
  createTestSuite(input: $input) {
    ...TestSuiteFields
  }
}
` + testSuiteFields
